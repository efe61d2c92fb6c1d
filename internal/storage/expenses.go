package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pbarbosa/finbot/internal/model"
)

// findExpenseLimit caps receipt-search candidate sets.
const findExpenseLimit = 10

// valueTolerance is the fuzzy-match window for value-based receipt search.
const valueTolerance = 0.10

// CreateExpense persists a completed draft and its attachments in one
// transaction, returning the new record id.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, conversationID string, draft model.ExpenseDraft) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(conversationID, "conversationID"); err != nil {
		return 0, err
	}
	if err := validateDraft(&draft); err != nil {
		return 0, err
	}

	establishment := draft.Establishment
	if establishment == "" {
		establishment = model.EstablishmentNone
	}

	var notes any
	if draft.Notes != "" {
		notes = draft.Notes
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (
			conversation_id, expense_date, category, value,
			establishment, payment_method, item, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conversationID,
		draft.ResolveDate(time.Now()),
		draft.Category,
		draft.Value,
		establishment,
		draft.PaymentMethod,
		draft.Item,
		notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get expense id: %w", err)
	}

	for _, ref := range draft.Attachments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_attachments (expense_id, ref) VALUES (?, ?)`,
			id, ref); err != nil {
			return 0, fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit expense: %w", err)
	}

	slog.Info("Expense registered",
		"conversation_id", conversationID,
		"expense_id", id,
		"value", draft.Value,
		"attachments", len(draft.Attachments))

	return id, nil
}

// ListExpenses returns the conversation's expenses within the period,
// ordered by expense date then insertion order.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, conversationID string, period model.Period) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(conversationID, "conversationID"); err != nil {
		return nil, err
	}

	query := `
		SELECT e.id, e.conversation_id, e.created_at, e.expense_date,
		       e.category, e.value, e.establishment, e.payment_method,
		       e.item, COALESCE(e.notes, ''),
		       EXISTS(SELECT 1 FROM expense_attachments a WHERE a.expense_id = e.id)
		FROM expenses e
		WHERE e.conversation_id = ?`
	args := []any{conversationID}

	if start, end, bounded := periodBounds(period, time.Now()); bounded {
		query += ` AND e.expense_date >= ? AND e.expense_date < ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY e.expense_date ASC, e.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

// SpendingByCategory aggregates spending per category within the period,
// largest totals first.
func (s *SQLiteStorage) SpendingByCategory(ctx context.Context, conversationID string, period model.Period) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(conversationID, "conversationID"); err != nil {
		return nil, err
	}

	query := `SELECT category, SUM(value) AS total FROM expenses WHERE conversation_id = ?`
	args := []any{conversationID}

	if start, end, bounded := periodBounds(period, time.Now()); bounded {
		query += ` AND expense_date >= ? AND expense_date < ?`
		args = append(args, start, end)
	}
	query += ` GROUP BY category ORDER BY total DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// FindExpenses matches expenses against the search criteria, oldest first,
// capped at 10 candidates. Values match within ±10%.
func (s *SQLiteStorage) FindExpenses(ctx context.Context, conversationID string, criteria model.SearchCriteria) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(conversationID, "conversationID"); err != nil {
		return nil, err
	}
	if criteria.Empty() {
		return nil, nil
	}

	query := `
		SELECT e.id, e.conversation_id, e.created_at, e.expense_date,
		       e.category, e.value, e.establishment, e.payment_method,
		       e.item, COALESCE(e.notes, ''),
		       EXISTS(SELECT 1 FROM expense_attachments a WHERE a.expense_id = e.id)
		FROM expenses e
		WHERE e.conversation_id = ?`
	args := []any{conversationID}
	var conditions []string

	if criteria.Item != "" {
		conditions = append(conditions, `e.item LIKE ?`)
		args = append(args, "%"+criteria.Item+"%")
	}
	if criteria.Value > 0 {
		conditions = append(conditions, `e.value BETWEEN ? AND ?`)
		args = append(args, criteria.Value*(1-valueTolerance), criteria.Value*(1+valueTolerance))
	}
	if criteria.Establishment != "" {
		conditions = append(conditions, `e.establishment LIKE ?`)
		args = append(args, "%"+criteria.Establishment+"%")
	}
	if criteria.Date != "" {
		if date, err := resolveCriteriaDate(criteria.Date, time.Now()); err == nil {
			conditions = append(conditions, `e.expense_date = ?`)
			args = append(args, date)
		}
	}
	if criteria.Category != "" {
		conditions = append(conditions, `e.category = ?`)
		args = append(args, criteria.Category)
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	query += ` AND ` + strings.Join(conditions, ` AND `)
	query += ` ORDER BY e.created_at ASC, e.id ASC LIMIT ?`
	args = append(args, findExpenseLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

// GetAttachments returns the attachment refs of an expense record.
func (s *SQLiteStorage) GetAttachments(ctx context.Context, expenseID int64) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(expenseID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ref FROM expense_attachments WHERE expense_id = ? ORDER BY id ASC`,
		expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanExpenses(rows *sql.Rows) ([]model.Expense, error) {
	var expenses []model.Expense
	for rows.Next() {
		var exp model.Expense
		if err := rows.Scan(
			&exp.ID,
			&exp.ConversationID,
			&exp.CreatedAt,
			&exp.Date,
			&exp.Category,
			&exp.Value,
			&exp.Establishment,
			&exp.PaymentMethod,
			&exp.Item,
			&exp.Notes,
			&exp.HasAttachment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

// periodBounds computes the [start, end) expense_date window for a period.
// PeriodAll is unbounded.
func periodBounds(period model.Period, now time.Time) (string, string, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case model.PeriodToday:
		return isoDate(today), isoDate(today.AddDate(0, 0, 1)), true
	case model.PeriodYesterday:
		return isoDate(today.AddDate(0, 0, -1)), isoDate(today), true
	case model.PeriodLastMonth:
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return isoDate(firstOfMonth.AddDate(0, -1, 0)), isoDate(firstOfMonth), true
	case model.PeriodAll:
		return "", "", false
	default: // PeriodMonth and anything unrecognized
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return isoDate(firstOfMonth), isoDate(firstOfMonth.AddDate(0, 1, 0)), true
	}
}

// resolveCriteriaDate turns a classifier-extracted date criterion into a
// concrete YYYY-MM-DD string. "today"/"yesterday" are relative to now.
func resolveCriteriaDate(raw string, now time.Time) (string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch raw {
	case "today":
		return isoDate(today), nil
	case "yesterday":
		return isoDate(today.AddDate(0, 0, -1)), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("unparseable date criterion %q: %w", raw, err)
	}
	return isoDate(parsed), nil
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}
