package entity

import (
	"errors"

	"github.com/oksasatya/auth-service/pkg/validation"
)

var (
	ErrInvalidEmail           = errors.New("invalid email")
	ErrPasswordTooShort       = errors.New("password too short")
	ErrPasswordBreached       = errors.New("password found in breach corpus")
	ErrBreachCheckUnavailable = errors.New("breach check unavailable")
)

// ValidationError is a field-level rejection raised while parsing raw input
// into a value type. Field "hibp" marks breach-check rejections.
type ValidationError struct {
	Field   string
	Tag     string
	Message string

	err   error
	cause error
}

func newValidationError(field, tag string, sentinel, cause error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Tag:     tag,
		Message: validation.MessageFor(tag, ""),
		err:     sentinel,
		cause:   cause,
	}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

// FieldName and FieldMessage let validation.ToDetails render the error.
func (e *ValidationError) FieldName() string    { return e.Field }
func (e *ValidationError) FieldMessage() string { return e.Message }

// Cause returns the checker failure behind an ErrBreachCheckUnavailable rejection, if any.
func (e *ValidationError) Cause() error { return e.cause }
