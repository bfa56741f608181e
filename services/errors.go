package services

import (
	"errors"
	"fmt"
)

// ValidationError covers malformed ids, missing fields and unrecognized
// enum values. Never retried by callers.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// NotFoundError means a subject id did not resolve.
type NotFoundError struct{ msg string }

func (e *NotFoundError) Error() string { return e.msg }

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// AuthorizationError means the actor's role or ownership does not permit the
// operation. No partial mutation happens before this check.
type AuthorizationError struct{ msg string }

func (e *AuthorizationError) Error() string { return e.msg }

func Authorizationf(format string, args ...any) error {
	return &AuthorizationError{msg: fmt.Sprintf(format, args...)}
}

func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// ConflictError surfaces a guarded write that lost a race or targeted a
// terminal subject.
type ConflictError struct{ msg string }

func (e *ConflictError) Error() string { return e.msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
