package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a slot value fails its type-specific validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedOperation is returned when an operation is not in the allow-list.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrSpawn is returned when the wrapped tool cannot be started.
	ErrSpawn = errors.New("spawn failed")

	// ErrSecretRetryExceeded is returned when the wrapped tool keeps re-prompting for a secret.
	ErrSecretRetryExceeded = errors.New("secret retry exceeded")

	// ErrSecretUnavailable is returned when the secret provider could not supply a secret.
	ErrSecretUnavailable = errors.New("secret unavailable")

	// ErrNoInteractiveInput is returned by secret providers when there is no terminal to read from.
	ErrNoInteractiveInput = errors.New("no interactive input available")

	// ErrTimeout is returned when an invocation exceeds its wall-clock budget.
	ErrTimeout = errors.New("execution timed out")

	// ErrCancelled is returned when an invocation is cancelled by the caller.
	ErrCancelled = errors.New("execution cancelled")

	// ErrUnknownStatus is returned when a transcript cannot be classified.
	ErrUnknownStatus = errors.New("unknown execution status")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionID is returned for IDs that are empty, too long or not path-safe.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrPreferenceNotFound is returned when a preference key has no value.
	ErrPreferenceNotFound = errors.New("preference not found")
)

// ErrorKind is the stable, user-visible name of an error class.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindValidation          ErrorKind = "validation"
	KindUnsupported         ErrorKind = "unsupported_operation"
	KindSpawn               ErrorKind = "spawn"
	KindSecretRetryExceeded ErrorKind = "secret_retry_exceeded"
	KindSecretUnavailable   ErrorKind = "secret_unavailable"
	KindTimeout             ErrorKind = "timeout"
	KindCancelled           ErrorKind = "cancelled"
	KindUnknownStatus       ErrorKind = "unknown_status"
	KindFailed              ErrorKind = "failed"
)

// ValidationError describes a slot value that failed validation.
type ValidationError struct {
	Slot   SlotName
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Slot == "" {
		return fmt.Sprintf("invalid value %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Slot, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnsupportedOperationError is returned when a (group, subcommand) pair is not allowed.
type UnsupportedOperationError struct {
	Group      string
	Subcommand string
	Intent     IntentTag
}

func (e *UnsupportedOperationError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("unsupported operation for intent %q", e.Intent)
	}
	return fmt.Sprintf("unsupported operation %q %q", e.Group, e.Subcommand)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// KindOf maps an error to its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnsupportedOperation):
		return KindUnsupported
	case errors.Is(err, ErrSpawn):
		return KindSpawn
	case errors.Is(err, ErrSecretRetryExceeded):
		return KindSecretRetryExceeded
	case errors.Is(err, ErrSecretUnavailable), errors.Is(err, ErrNoInteractiveInput):
		return KindSecretUnavailable
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrUnknownStatus):
		return KindUnknownStatus
	default:
		return KindFailed
	}
}
