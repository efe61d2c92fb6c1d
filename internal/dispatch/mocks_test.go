package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/state"
)

// recordingHandler captures log records so tests can assert on levels.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) levels() []slog.Level {
	h.mu.Lock()
	defer h.mu.Unlock()
	levels := make([]slog.Level, 0, len(h.records))
	for _, r := range h.records {
		levels = append(levels, r.Level)
	}
	return levels
}

// mockClassifier replays a scripted sequence of analyses, repeating the
// last one once the script runs out.
type mockClassifier struct {
	script    []model.Analysis
	err       error
	calls     int
	lastConvs []state.Conversation
}

func (m *mockClassifier) Analyze(_ context.Context, _ string, conv *state.Conversation) (model.Analysis, error) {
	if conv != nil {
		m.lastConvs = append(m.lastConvs, *conv)
	}
	if m.err != nil {
		return model.Analysis{}, m.err
	}
	idx := m.calls
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	m.calls++
	return m.script[idx], nil
}

type mockGenerator struct {
	conversationalText string
	conversationalErr  error
	adviceText         string
	adviceErr          error
	researchText       string
	researchErr        error

	lastIntent     model.Intent
	lastFresh      bool
	lastSpending   []model.CategoryTotal
	lastContext    string
	lastTopic      string
	lastRefinement string
}

func (m *mockGenerator) Conversational(_ context.Context, _ string, intent model.Intent, fresh bool) (string, error) {
	m.lastIntent = intent
	m.lastFresh = fresh
	return m.conversationalText, m.conversationalErr
}

func (m *mockGenerator) SpendingAdvice(_ context.Context, spending []model.CategoryTotal, userContext string) (string, error) {
	m.lastSpending = spending
	m.lastContext = userContext
	return m.adviceText, m.adviceErr
}

func (m *mockGenerator) Research(_ context.Context, topic, refinement string) (string, error) {
	m.lastTopic = topic
	m.lastRefinement = refinement
	return m.researchText, m.researchErr
}

type mockStorage struct {
	createID    int64
	createErr   error
	created     []model.ExpenseDraft
	listResult  []model.Expense
	listErr     error
	spending    map[model.Period][]model.CategoryTotal
	spendingErr error
	findResult  []model.Expense
	findErr     error
	attachments map[int64][]string

	lastPeriod   model.Period
	lastCriteria model.SearchCriteria
}

func (m *mockStorage) CreateExpense(_ context.Context, _ string, draft model.ExpenseDraft) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = append(m.created, draft)
	return m.createID, nil
}

func (m *mockStorage) ListExpenses(_ context.Context, _ string, period model.Period) ([]model.Expense, error) {
	m.lastPeriod = period
	return m.listResult, m.listErr
}

func (m *mockStorage) SpendingByCategory(_ context.Context, _ string, period model.Period) ([]model.CategoryTotal, error) {
	m.lastPeriod = period
	return m.spending[period], m.spendingErr
}

func (m *mockStorage) FindExpenses(_ context.Context, _ string, criteria model.SearchCriteria) ([]model.Expense, error) {
	m.lastCriteria = criteria
	return m.findResult, m.findErr
}

func (m *mockStorage) GetAttachments(_ context.Context, expenseID int64) ([]string, error) {
	return m.attachments[expenseID], nil
}

func (m *mockStorage) Migrate(context.Context) error { return nil }

func (m *mockStorage) Close() error { return nil }
