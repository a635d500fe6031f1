package models

import (
	"errors"
	"fmt"
)

// Domain errors returned by the engines. The HTTP layer maps each of these to
// a status code in utils.WriteError; anything not listed here is treated as a
// storage failure and reported as a 500.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrForbidden        = errors.New("you do not own this resource")
	ErrConflict         = errors.New("conflicting concurrent update")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
