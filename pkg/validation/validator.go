package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Engine returns the shared validator instance.
// Aliases registered here are the credential rules used by the domain value types.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Aliases for common semantics
		v.RegisterAlias("pwd", "min=8") // password minimum length
			v.RegisterAlias("emailaddr", "required,email")
		validate = v
	})
	return validate
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return Engine().Var(s, "emailaddr") == nil
}

// HasNoWhitespace reports whether s contains no whitespace runes.
func HasNoWhitespace(s string) bool {
	return !strings.ContainsFunc(s, unicode.IsSpace)
}

// HasMinLength reports whether s has at least n characters (runes, not bytes).
func HasMinLength(s string, n int) bool {
	return Engine().Var(s, "min="+strconv.Itoa(n)) == nil
}

// Detailer is implemented by errors that carry a single field-level message.
type Detailer interface {
	FieldName() string
	FieldMessage() string
}

// ToDetails converts validation errors into a map[field]message suitable for error details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var d Detailer
	if errors.As(err, &d) {
		return map[string]string{d.FieldName(): d.FieldMessage()}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = MessageFor(fe.Tag(), fe.Param())
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

// MessageFor returns a human-friendly message for a validator tag.
func MessageFor(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email", "emailaddr":
		return "must be a valid email"
	case "min":
		if param != "" {
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			return "must be at most " + param + " characters long"
		}
		return "too large"
	case "pwd":
		return "min length 8"
	case "hibp":
		return "vulnerable or common password"
	case "hibp_unavailable":
		return "breach check unavailable, try again"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}
