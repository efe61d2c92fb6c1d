// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/state"
)

// Storage defines the contract for the expense record store.
type Storage interface {
	// CreateExpense persists the draft (with its attachment refs) and
	// returns the new record id.
	CreateExpense(ctx context.Context, conversationID string, draft model.ExpenseDraft) (int64, error)

	// ListExpenses returns the conversation's expenses within the period,
	// ordered by expense date ascending.
	ListExpenses(ctx context.Context, conversationID string, period model.Period) ([]model.Expense, error)

	// SpendingByCategory aggregates spending per category within the
	// period, largest totals first.
	SpendingByCategory(ctx context.Context, conversationID string, period model.Period) ([]model.CategoryTotal, error)

	// FindExpenses matches expenses against the criteria, oldest first,
	// capped at 10 candidates.
	FindExpenses(ctx context.Context, conversationID string, criteria model.SearchCriteria) ([]model.Expense, error)

	// GetAttachments returns the attachment refs of a record.
	GetAttachments(ctx context.Context, expenseID int64) ([]string, error)

	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error

	Close() error
}

// Classifier converts a raw chat message plus the current conversation
// state into a structured intent+entities record. Upstream failures are
// signaled through Analysis.Err rather than the error return, which is
// reserved for local faults.
type Classifier interface {
	Analyze(ctx context.Context, text string, conv *state.Conversation) (model.Analysis, error)
}

// Generator produces the free-form conversational text the dispatcher
// cannot derive from structured data alone.
type Generator interface {
	// Conversational renders a short reply for the given intent
	// (greeting, chit-chat, cancellation ack, unknown). fresh signals a
	// conversation resuming after a long idle gap.
	Conversational(ctx context.Context, message string, intent model.Intent, fresh bool) (string, error)

	// SpendingAdvice generates advice from aggregated spending and the
	// user's free-form context. spending may be empty.
	SpendingAdvice(ctx context.Context, spending []model.CategoryTotal, userContext string) (string, error)

	// Research explains a financial topic. A non-empty refinement asks
	// for a follow-up pass over the same topic.
	Research(ctx context.Context, topic, refinement string) (string, error)
}
