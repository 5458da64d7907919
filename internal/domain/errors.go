package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrStorage           = errors.New("storage error")
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindStorage           ErrorKind = "STORAGE_ERROR"
)

// KindOf classifies err. Anything not carrying one of the sentinels is
// treated as a collaborator failure.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindStorage
	}
}

func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func UnauthorizedError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func NotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func ConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func InvalidTransitionError(from RequestStatus, event string) error {
	return fmt.Errorf("%w: cannot %s a %s request", ErrInvalidTransition, event, from)
}

// StorageError wraps a collaborator failure so it classifies as ErrStorage
// while keeping the cause reachable through errors.Is/As.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
