package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
)

func mustUser(t *testing.T, email, password string, requires2FA bool) entity.User {
	t.Helper()
	e, err := entity.ParseEmail(email)
	require.NoError(t, err)
	p, err := entity.ParsePassword(context.Background(), password, nil)
	require.NoError(t, err)
	return entity.NewUser(e, p, requires2FA)
}

func TestUserStore_AddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("adds unique user", func(t *testing.T) {
		store := NewUserStore()
		err := store.AddUser(ctx, mustUser(t, "user@example.com", "secret-pass", true))
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("refuses duplicate user", func(t *testing.T) {
		store := NewUserStore()
		u := mustUser(t, "user@example.com", "secret-pass", true)

		require.NoError(t, store.AddUser(ctx, u))
		err := store.AddUser(ctx, u)

		assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("duplicate does not overwrite", func(t *testing.T) {
		store := NewUserStore()
		require.NoError(t, store.AddUser(ctx, mustUser(t, "user@example.com", "first-pass", false)))
		err := store.AddUser(ctx, mustUser(t, "user@example.com", "second-pass", true))
		require.ErrorIs(t, err, repository.ErrUserAlreadyExists)

		got, err := store.GetUser(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "first-pass", got.Password.Plaintext())
		assert.False(t, got.Requires2FA)
	})
}

func TestUserStore_GetUser(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	u := mustUser(t, "user@example.com", "secret-pass", true)
	require.NoError(t, store.AddUser(ctx, u))

	t.Run("returns stored user", func(t *testing.T) {
		got, err := store.GetUser(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUser(ctx, "other@example.com")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("lookup is exact match", func(t *testing.T) {
		_, err := store.GetUser(ctx, "USER@example.com")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		got, err := store.GetUser(ctx, "user@example.com")
		require.NoError(t, err)
		got.Requires2FA = false

		again, err := store.GetUser(ctx, "user@example.com")
		require.NoError(t, err)
		assert.True(t, again.Requires2FA)
	})
}

func TestUserStore_ValidateUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     []Option
		email    string
		password string
		wantErr  error
	}{
		{"correct credentials", nil, "user@example.com", "secret-pass", nil},
		{"wrong password", nil, "user@example.com", "password", repository.ErrInvalidCredentials},
		{"unknown user", nil, "unknown@example.com", "secret-pass", repository.ErrUserNotFound},
		{"unified: correct credentials", []Option{WithUnifiedCredentialErrors()}, "user@example.com", "secret-pass", nil},
		{"unified: wrong password", []Option{WithUnifiedCredentialErrors()}, "user@example.com", "password", repository.ErrInvalidCredentials},
		{"unified: unknown user", []Option{WithUnifiedCredentialErrors()}, "unknown@example.com", "secret-pass", repository.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewUserStore(tt.opts...)
			require.NoError(t, store.AddUser(ctx, mustUser(t, "user@example.com", "secret-pass", true)))

			err := store.ValidateUser(ctx, tt.email, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserStore_ConcurrentAddSameEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	u := mustUser(t, "race@example.com", "secret-pass", false)

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- store.AddUser(ctx, u)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok, exists int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, repository.ErrUserAlreadyExists):
			exists++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, exists)
	assert.Equal(t, 1, store.Len())
}

func TestUserStore_ConcurrentReadsAndWrites(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	seed := mustUser(t, "seed@example.com", "secret-pass", false)
	require.NoError(t, store.AddUser(ctx, seed))

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	users := make([]entity.User, len(emails))
	for i, e := range emails {
		users[i] = mustUser(t, e, "secret-pass", i%2 == 0)
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u entity.User) {
			defer wg.Done()
			assert.NoError(t, store.AddUser(ctx, u))
		}(u)
	}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.ValidateUser(ctx, "seed@example.com", "secret-pass"))
			got, err := store.GetUser(ctx, "seed@example.com")
			assert.NoError(t, err)
			assert.Equal(t, seed, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, len(emails)+1, store.Len())
	for _, u := range users {
		got, err := store.GetUser(ctx, u.Email.Address())
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestUserStore_SignupScenario(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	u := mustUser(t, "new@example.com", "password123", true)
	require.NoError(t, store.AddUser(ctx, u))

	got, err := store.GetUser(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email.Address())
	assert.Equal(t, "password123", got.Password.Plaintext())
	assert.True(t, got.Requires2FA)

	assert.NoError(t, store.ValidateUser(ctx, "new@example.com", "password123"))
	assert.ErrorIs(t, store.ValidateUser(ctx, "new@example.com", "wrong"), repository.ErrInvalidCredentials)
}
