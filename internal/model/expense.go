// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"
)

// Sentinel values applied to optional expense fields.
const (
	// DefaultCategory is assigned when no category was extracted or provided.
	DefaultCategory = "Outros"
	// EstablishmentNA is the user-facing "not applicable" marker.
	EstablishmentNA = "N/A"
	// EstablishmentNone is the stored sentinel for an absent establishment.
	EstablishmentNone = "N/E"
	// DateToday marks a draft dated at persist time rather than an explicit day.
	DateToday = "today"
)

// ExpenseDraft holds the partially collected fields of an in-progress
// expense registration. A draft may be persisted only once Value, Item and
// PaymentMethod are present and valid.
type ExpenseDraft struct {
	Item          string
	PaymentMethod string
	Category      string
	Establishment string
	Notes         string
	Date          string
	Attachments   []string
	Value         float64
}

// HasValue reports whether the draft carries a valid positive value.
func (d *ExpenseDraft) HasValue() bool {
	return d.Value > 0
}

// Validate checks that all fields required for persistence are present.
// It re-checks value, item, category and payment method even though the
// slot-filling flow should have guaranteed them upstream.
func (d *ExpenseDraft) Validate() error {
	if !d.HasValue() {
		return fmt.Errorf("draft value must be positive, got %v", d.Value)
	}
	if d.Item == "" {
		return fmt.Errorf("draft item is empty")
	}
	if d.Category == "" {
		return fmt.Errorf("draft category is empty")
	}
	if d.PaymentMethod == "" {
		return fmt.Errorf("draft payment method is empty")
	}
	return nil
}

// ResolveDate returns the calendar date the expense should be stored under.
// The literal "today", an empty value or an unparseable date all resolve to
// the provided current day.
func (d *ExpenseDraft) ResolveDate(now time.Time) string {
	if d.Date == "" || d.Date == DateToday {
		return now.Format("2006-01-02")
	}
	parsed, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return now.Format("2006-01-02")
	}
	return parsed.Format("2006-01-02")
}

// Expense represents a persisted expense record.
type Expense struct {
	CreatedAt      time.Time
	ConversationID string
	Date           string // YYYY-MM-DD
	Category       string
	Establishment  string
	PaymentMethod  string
	Item           string
	Notes          string
	ID             int64
	Value          float64
	HasAttachment  bool
}

// CategoryTotal is an aggregated spending amount for a single category.
type CategoryTotal struct {
	Category string
	Total    float64
}

// SearchCriteria narrows a receipt lookup. Zero values mean "not filtered".
type SearchCriteria struct {
	Item          string
	Establishment string
	Category      string
	Date          string
	Value         float64
}

// Empty reports whether no usable criterion was provided.
func (c SearchCriteria) Empty() bool {
	return c.Item == "" && c.Establishment == "" && c.Category == "" &&
		c.Date == "" && c.Value <= 0
}
