package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/auth-service/internal/domain/entity"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnexpected         = errors.New("unexpected error")
)

// UserStore defines the storage contract for users, keyed by email address.
type UserStore interface {
	// AddUser inserts user. Returns ErrUserAlreadyExists if the address is taken.
	AddUser(ctx context.Context, user entity.User) error

	// GetUser returns a copy of the user with the given address, or ErrUserNotFound.
	// In-memory stores return the Password exactly as added. Durable stores keep
	// only a digest and return it via entity.RestorePassword, so Password.Plaintext
	// is the digest there; use ValidateUser to check a password.
	GetUser(ctx context.Context, email string) (entity.User, error)

	// ValidateUser checks a password against the stored user.
	// Returns ErrUserNotFound for unknown addresses unless the store was built
	// with unified credential errors, in which case ErrInvalidCredentials is returned.
	ValidateUser(ctx context.Context, email, password string) error
}

// UnexpectedError wraps a backend failure. Its message never includes the
// cause; use Cause for logging.
type UnexpectedError struct {
	Op    string
	cause error
}

// NewUnexpectedError wraps cause as a failure of op.
func NewUnexpectedError(op string, cause error) *UnexpectedError {
	return &UnexpectedError{Op: op, cause: cause}
}

func (e *UnexpectedError) Error() string { return ErrUnexpected.Error() }

func (e *UnexpectedError) Is(target error) bool { return target == ErrUnexpected }

// Cause returns the underlying backend error.
func (e *UnexpectedError) Cause() error { return e.cause }

// Error kinds, used as log fields and metric labels.
const (
	KindOK                 = "ok"
	KindAlreadyExists      = "already_exists"
	KindNotFound           = "not_found"
	KindInvalidCredentials = "invalid_credentials"
	KindUnexpected         = "unexpected"
)

// Kind classifies a store error. Anything not in the taxonomy counts as unexpected.
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrUserAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	default:
		return KindUnexpected
	}
}
