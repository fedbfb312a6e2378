package entity

import "github.com/oksasatya/auth-service/pkg/validation"

// Email is a syntactically valid email address.
// The zero value is not valid; obtain one through ParseEmail.
type Email struct {
	address string
}

// ParseEmail validates input and wraps it as an Email.
func ParseEmail(input string) (Email, error) {
	if !validation.HasNoWhitespace(input) || !validation.IsEmail(input) {
		return Email{}, newValidationError("address", "email", ErrInvalidEmail, nil)
	}
	return Email{address: input}, nil
}

// Address returns the address exactly as it was parsed. It is the store key.
func (e Email) Address() string { return e.address }

func (e Email) String() string { return e.address }
