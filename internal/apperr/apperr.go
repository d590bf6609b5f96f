// Package apperr defines the closed set of operational error kinds used by
// the payment workflow. Services attach a kind once; the web boundary maps
// kinds to HTTP status codes in a single place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindLockContention
	KindNotFound
	KindGateway
	KindStore
	KindInternal
)

// Code returns the machine-readable code for a kind, used in response bodies.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindLockContention:
		return "LOCKED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindGateway:
		return "GATEWAY_ERROR"
	case KindStore:
		return "STORE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an operational error with a kind and a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause. The cause is
// never rendered to clients outside development mode.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; unclassified errors report
// KindUnknown and are rendered as a generic internal failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of a classified error, or a
// generic message for anything unclassified.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
