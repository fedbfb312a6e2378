package entity

import (
	"context"

	"github.com/oksasatya/auth-service/pkg/validation"
)

// MinPasswordLength is the minimum number of characters a password must have.
const MinPasswordLength = 8

const redacted = "********"

// BreachChecker answers whether a plaintext password is known to be compromised.
// Implementations may perform network I/O and must honor ctx.
type BreachChecker interface {
	IsBreached(ctx context.Context, password string) (bool, error)
}

// Password is a credential that passed validation at parse time.
// The breach check is a point-in-time guarantee and is never repeated.
type Password struct {
	value string
}

// ParsePassword validates input and wraps it as a Password.
//
// The length rule is checked first and locally; checker is only consulted
// for passwords that pass it. A nil checker disables the breach check.
// Checker failures are treated as a rejection.
func ParsePassword(ctx context.Context, input string, checker BreachChecker) (Password, error) {
	if !validation.HasMinLength(input, MinPasswordLength) {
		return Password{}, newValidationError("password", "pwd", ErrPasswordTooShort, nil)
	}
	if checker == nil {
		return Password{value: input}, nil
	}

	breached, err := checker.IsBreached(ctx, input)
	if err != nil {
		return Password{}, newValidationError("hibp", "hibp_unavailable", ErrBreachCheckUnavailable, err)
	}
	if breached {
		return Password{}, newValidationError("hibp", "hibp", ErrPasswordBreached, nil)
	}
	return Password{value: input}, nil
}

// RestorePassword rehydrates a credential read back from a durable store,
// where it is held as a digest. It must not be used on user input.
func RestorePassword(digest string) Password {
	return Password{value: digest}
}

// Plaintext returns the wrapped value.
func (p Password) Plaintext() string { return p.value }

// String keeps passwords out of logs and fmt output.
func (p Password) String() string { return redacted }

// GoString keeps %#v redacted as well.
func (p Password) GoString() string { return "entity.Password{" + redacted + "}" }
