package lib

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors for the service layer. Handlers map these to HTTP status
// codes; services wrap them with operation context via fmt.Errorf and %w.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrStorage         = errors.New("storage failure")
)

// NotFoundError returns a wrapped ErrNotFound with a resource name.
func NotFoundError(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// ForbiddenError returns a wrapped ErrForbidden.
func ForbiddenError(message string) error {
	if message == "" {
		message = "you do not have permission to perform this action"
	}
	return fmt.Errorf("%w: %s", ErrForbidden, message)
}

// ValidationError returns a wrapped ErrValidation.
func ValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// UnauthenticatedError returns a wrapped ErrUnauthenticated.
func UnauthenticatedError(message string) error {
	if message == "" {
		message = "a signed-in user is required"
	}
	return fmt.Errorf("%w: %s", ErrUnauthenticated, message)
}

// StorageError wraps a low-level persistence or object-store error.
// gorm.ErrRecordNotFound is translated to ErrNotFound so callers only ever
// see the service taxonomy.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
