// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrValidation indicates a provided slot value failed type or range checks.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence indicates the record store rejected an operation.
	ErrPersistence = errors.New("persistence failed")

	// ErrStateFault indicates the conversation state is structurally inconsistent.
	ErrStateFault = errors.New("conversation state fault")

	// ErrDisambiguation indicates a selection did not resolve to a candidate.
	ErrDisambiguation = errors.New("disambiguation mismatch")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error whose message should be shown to the chat user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage extracts the user-facing message from an error, falling back
// to the provided default when the error carries none.
func UserMessage(err error, fallback string) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return fallback
}
