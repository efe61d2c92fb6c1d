// Package state holds per-conversation dialogue state between messages.
package state

import (
	"sync"
	"time"

	"github.com/pbarbosa/finbot/internal/model"
)

// Waiting tags which slot or confirmation a conversation is blocked on.
type Waiting string

// Waiting values.
const (
	WaitingNone                  Waiting = ""
	WaitingValue                 Waiting = "value"
	WaitingItem                  Waiting = "item"
	WaitingPaymentMethod         Waiting = "payment_method"
	WaitingEstablishment         Waiting = "establishment"
	WaitingNotes                 Waiting = "notes"
	WaitingNotesConfirmation     Waiting = "notes_confirmation"
	WaitingAdviceConfirmation    Waiting = "advice_confirmation"
	WaitingReceiptDisambiguation Waiting = "receipt_disambiguation"
)

// Conversation is the dialogue state of one conversation id. Only the
// payload matching WaitingFor is meaningful at any time: Draft during
// registration, Candidates during receipt disambiguation, AdviceContext
// while an advice offer is pending. LastResearchTopic survives routine
// flow resets.
type Conversation struct {
	Draft             *model.ExpenseDraft
	Candidates        []model.Expense
	AdviceContext     string
	LastResearchTopic string
	WaitingFor        Waiting
}

// Pending reports whether the conversation is blocked on a slot or
// confirmation.
func (c *Conversation) Pending() bool {
	return c != nil && c.WaitingFor != WaitingNone
}

// Store is a keyed, in-memory conversation state store. All operations are
// synchronous, affect only the addressed entry, and treat unknown ids as
// absent rather than erroring.
type Store struct {
	conversations map[string]*Conversation
	activity      map[string]time.Time
	mu            sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		activity:      make(map[string]time.Time),
	}
}

// Get returns a copy of the conversation state, or false when absent.
func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return Conversation{}, false
	}
	return *conv, true
}

// Set replaces the conversation state. A nil state deletes the entry.
func (s *Store) Set(id string, conv *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv == nil {
		delete(s.conversations, id)
		return
	}
	copied := *conv
	s.conversations[id] = &copied
}

// Merge creates the entry if absent and applies the update to it.
func (s *Store) Merge(id string, update func(*Conversation)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = &Conversation{}
		s.conversations[id] = conv
	}
	update(conv)
}

// Clear deletes the conversation state entirely.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}

// ResetFlow clears the pending slot and any flow payload while preserving
// the research topic. Calling it on an absent or already-idle entry is a
// no-op on the topic.
func (s *Store) ResetFlow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return
	}
	conv.WaitingFor = WaitingNone
	conv.Draft = nil
	conv.Candidates = nil
	conv.AdviceContext = ""
}

// ClearResearchTopic drops only the stored research topic.
func (s *Store) ClearResearchTopic(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[id]; ok {
		conv.LastResearchTopic = ""
	}
}

// LastActivity returns the timestamp of the last message seen for the
// conversation, or the zero time when none was recorded.
func (s *Store) LastActivity(id string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity[id]
}

// Touch records message activity for the conversation.
func (s *Store) Touch(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[id] = at
}
