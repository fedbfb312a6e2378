package memory

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
)

// UserStore is an in-process repository.UserStore. Contents are lost on restart.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]entity.User
	unified bool
}

// Option configures a UserStore.
type Option func(*UserStore)

// WithUnifiedCredentialErrors makes ValidateUser report unknown addresses as
// ErrInvalidCredentials so callers cannot tell them apart from wrong passwords.
func WithUnifiedCredentialErrors() Option {
	return func(s *UserStore) { s.unified = true }
}

func NewUserStore(opts ...Option) *UserStore {
	s := &UserStore{users: make(map[string]entity.User)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserStore) AddUser(ctx context.Context, user entity.User) error {
	key := user.Email.Address()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; ok {
		return repository.ErrUserAlreadyExists
	}
	s.users[key] = user
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, email string) (entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return entity.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// ValidateUser reports a missing user and a wrong password differently unless
// the store was built with WithUnifiedCredentialErrors. The default lets
// callers enumerate registered addresses.
func (s *UserStore) ValidateUser(ctx context.Context, email, password string) error {
	u, err := s.GetUser(ctx, email)
	if err != nil {
		if s.unified {
			return repository.ErrInvalidCredentials
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(u.Password.Plaintext()), []byte(password)) != 1 {
		return repository.ErrInvalidCredentials
	}
	return nil
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

var _ repository.UserStore = (*UserStore)(nil)
