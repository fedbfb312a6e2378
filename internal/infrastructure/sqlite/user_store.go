package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
)

// Hasher produces and checks password digests.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
	CompareDummy(plain string)
}

// UserStore keeps users in SQLite. Like the postgres store it holds digests,
// so GetUser returns users whose Password is the stored digest.
type UserStore struct {
	db      *sql.DB
	hasher  Hasher
	unified bool
}

// Option configures a UserStore.
type Option func(*UserStore)

// WithUnifiedCredentialErrors makes ValidateUser report unknown addresses as
// ErrInvalidCredentials.
func WithUnifiedCredentialErrors() Option {
	return func(s *UserStore) { s.unified = true }
}

func NewUserStore(db *sql.DB, hasher Hasher, opts ...Option) *UserStore {
	s := &UserStore{db: db, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func (s *UserStore) AddUser(ctx context.Context, user entity.User) error {
	digest, err := s.hasher.Hash(user.Password.Plaintext())
	if err != nil {
		return repository.NewUnexpectedError("hash password", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, requires_2fa) VALUES (?, ?, ?, ?)",
		uuid.NewString(), user.Email.Address(), digest, user.Requires2FA,
	)
	if err != nil {
		if isConstraint(err) {
			return repository.ErrUserAlreadyExists
		}
		return repository.NewUnexpectedError("insert user", err)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, email string) (entity.User, error) {
	var (
		address     string
		digest      string
		requires2FA bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT email, password_hash, requires_2fa FROM users WHERE email = ?",
		email,
	).Scan(&address, &digest, &requires2FA)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, repository.ErrUserNotFound
	}
	if err != nil {
		return entity.User{}, repository.NewUnexpectedError("select user", err)
	}

	parsed, err := entity.ParseEmail(address)
	if err != nil {
		return entity.User{}, repository.NewUnexpectedError("decode stored email", err)
	}
	return entity.NewUser(parsed, entity.RestorePassword(digest), requires2FA), nil
}

func (s *UserStore) ValidateUser(ctx context.Context, email, password string) error {
	u, err := s.GetUser(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		// Always run bcrypt so unknown addresses cost the same as wrong passwords.
		s.hasher.CompareDummy(password)
		if s.unified {
			return repository.ErrInvalidCredentials
		}
		return err
	}
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.Password.Plaintext(), password) {
		return repository.ErrInvalidCredentials
	}
	return nil
}

var _ repository.UserStore = (*UserStore)(nil)
