// Package apperror defines the error kinds shared by services and handlers.
// Services wrap one of these sentinels with context; handlers map them to
// HTTP status codes with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the entity id is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller does not own the entity it tries to change.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument means a required field is missing or a value is not accepted.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream means an outbound collaborator (image host, email, classifier) failed.
	ErrUpstream = errors.New("upstream failure")
	// ErrConflict means a unique key already exists.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means credentials or a token were rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Forbidden wraps ErrForbidden with a formatted message.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}

// Invalid wraps ErrInvalidArgument with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// Upstream wraps ErrUpstream together with the collaborator's own error.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// AssertOwner is the single ownership check used before any update or delete.
func AssertOwner(entity string, ownerID, actorID int64) error {
	if ownerID != actorID {
		return Forbidden("%s is owned by another user", entity)
	}
	return nil
}
