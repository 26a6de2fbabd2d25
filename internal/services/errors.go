package services

import (
	"errors"
	"fmt"

	"tripshare-backend/internal/repository"
)

// Errors returned by services. Handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBanned       = errors.New("account is banned")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError reports an invalid input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Is makes errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func conflict(message string) error {
	return fmt.Errorf("%w: %s", ErrConflict, message)
}

func forbidden(message string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, message)
}

// storeErr translates repository errors into service errors
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s %w", what, ErrConflict)
	default:
		return err
	}
}
