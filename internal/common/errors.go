// Package common holds the error taxonomy shared between the repository,
// service, and HTTP layers.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by
	// someone else. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password is wrong, without revealing which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token fails verification or is no
	// longer present in the owning user's token list.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already in use")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError constructs a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
