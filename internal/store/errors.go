package store

import (
	"context"
	"errors"
)

// Failure taxonomy surfaced to callers. Every store error wraps one of these
// so screens can map it to a stable user-facing message.
var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnavailable       = errors.New("service unavailable")
	ErrAborted           = errors.New("operation aborted")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInternal          = errors.New("database error")
	ErrNetwork           = errors.New("network error")
)

// IsCancellation reports whether err is control-flow cancellation rather than
// a real failure. Cancellation is never shown to the user and must not
// terminate a live subscription.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage maps a failure to a stable, human-readable message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "You don't have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "The service is currently unavailable. Please try again later."
	case errors.Is(err, ErrAborted):
		return "The operation was interrupted. Please try again."
	case errors.Is(err, ErrResourceExhausted):
		return "Too many requests. Please slow down."
	case errors.Is(err, ErrUnauthenticated):
		return "You need to sign in first."
	case errors.Is(err, ErrNetwork):
		return "Network error. Check your connection."
	case errors.Is(err, ErrInternal):
		return "Database error. Please try again."
	default:
		return "An unknown error occurred."
	}
}
