package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
)

// poolIface is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Hasher produces and checks password digests.
// CompareDummy burns a comparison for unknown users.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
	CompareDummy(plain string)
}

// UserStore is a durable repository.UserStore. Passwords are stored only as
// digests, so GetUser returns users whose Password holds the digest.
type UserStore struct {
	pool    poolIface
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

func NewUserStore(pool poolIface, hasher Hasher, opts ...Option) *UserStore {
	s := &UserStore{pool: pool, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser relies on the unique index on users.email for atomicity.
func (s *UserStore) AddUser(ctx context.Context, user entity.User) error {
	digest, err := s.hasher.Hash(user.Password.Plaintext())
	if err != nil {
		return repository.NewUnexpectedError("hash password", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, requires_2fa)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), user.Email.Address(), digest, user.Requires2FA)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
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
	row := s.pool.QueryRow(ctx, `
		SELECT email, password_hash, requires_2fa
		FROM users
		WHERE email = $1
	`, email)
	if err := row.Scan(&address, &digest, &requires2FA); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, repository.ErrUserNotFound
		}
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
