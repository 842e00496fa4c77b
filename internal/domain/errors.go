package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuth
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindStore:
		return "store"
	default:
		return "unexpected"
	}
}

// User-facing messages.
const (
	MsgRequiredFields = "Title and URL are required."
	MsgInvalidURL     = "Please enter a valid URL."
	MsgLoginRequired  = "You must be logged in to add bookmarks."
	MsgUnexpected     = "An unexpected error occurred."
	MsgDeleteFailed   = "Failed to delete bookmark"
	MsgSaveFailed     = "Failed to save bookmark"
)

// Error carries a kind and a message safe to show to the user. Err, when
// set, is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewAuthError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// NewStoreError wraps a backend rejection. msg is what the backend reported.
func NewStoreError(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// UserMessage returns the text to display for err. Anything outside the
// taxonomy collapses to the generic message.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindUnexpected && de.Message != "" {
		return de.Message
	}
	return MsgUnexpected
}
