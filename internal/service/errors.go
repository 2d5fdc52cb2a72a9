package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/edu-leads/internal/repository"
)

// Kind classifies a service error for the HTTP boundary.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindDuplicate
	KindAuthentication
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Reasons. Match them with errors.Is; every *Error wraps exactly one.
var (
	ErrMissingField       = errors.New("missing_field")
	ErrInvalidField       = errors.New("invalid_field")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrDuplicateLead      = errors.New("duplicate_lead")
	ErrDuplicateAdmin     = errors.New("duplicate_admin")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrNotFound           = errors.New("not_found")
	ErrTimeout            = errors.New("timeout")
	ErrStoreFailure       = errors.New("store_failure")
)

// Error is the structured error returned by every service operation.
// Message is safe to show to clients; Cause is for logs only.
type Error struct {
	Kind    Kind
	Reason  error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Reason, e.Cause}
	}
	return []error{e.Reason}
}

// Code is the stable machine-readable identifier of the reason.
func (e *Error) Code() string { return e.Reason.Error() }

// Retryable reports whether a caller may retry the operation unchanged.
// Only store failures qualify.
func (e *Error) Retryable() bool { return e.Kind == KindStore }

// kindOf returns the kind of err, or 0 when err is not an *Error.
func kindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func validationError(reason error, msg string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: msg}
}

func authError(reason error, msg string) *Error {
	return &Error{Kind: KindAuthentication, Reason: reason, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Reason: ErrNotFound, Message: msg}
}

// storeError wraps an unexpected persistence failure. Deadline and
// cancellation errors become ErrTimeout.
func storeError(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindStore, Reason: ErrTimeout, Message: op + " timed out", Cause: err}
	}
	return &Error{Kind: KindStore, Reason: ErrStoreFailure, Message: op + " failed", Cause: err}
}

// translate maps repository sentinels for one operation; anything else is a
// store error.
func translate(op string, err error, notFound string, duplicate *Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != "":
		return notFoundError(notFound)
	case errors.Is(err, repository.ErrDuplicate) && duplicate != nil:
		return duplicate
	}
	return storeError(op, err)
}
