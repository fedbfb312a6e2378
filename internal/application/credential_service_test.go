package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/auth-service/internal/application"
	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
	"github.com/oksasatya/auth-service/internal/infrastructure/breach"
	"github.com/oksasatya/auth-service/internal/infrastructure/memory"
)

type recorder struct {
	mu      sync.Mutex
	signups []string
	logins  []string
}

func (r *recorder) RecordSignup(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signups = append(r.signups, outcome)
}

func (r *recorder) RecordLogin(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, outcome)
}

func (r *recorder) RecordBreachCheck(string, time.Duration) {}

type blockingChecker struct{}

func (blockingChecker) IsBreached(ctx context.Context, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

type failingStore struct {
	repository.UserStore
	err error
}

func (f failingStore) AddUser(context.Context, entity.User) error        { return f.err }
func (f failingStore) ValidateUser(context.Context, string, string) error { return f.err }

func newService(t *testing.T, checker entity.BreachChecker) (*application.Service, *recorder, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	rec := &recorder{}
	return application.NewService(memory.NewUserStore(), checker, logger, rec, 0), rec, hook
}

func TestSignupThenLogin(t *testing.T) {
	svc, rec, _ := newService(t, nil)
	ctx := context.Background()

	user, err := svc.Signup(ctx, application.SignupInput{
		Email:       "new@example.com",
		Password:    "password123",
		Requires2FA: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email.Address())
	assert.True(t, user.Requires2FA)

	got, err := svc.GetUser(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "password123", got.Password.Plaintext())
	assert.True(t, got.Requires2FA)

	assert.NoError(t, svc.Login(ctx, "new@example.com", "password123"))
	assert.ErrorIs(t, svc.Login(ctx, "new@example.com", "password"), repository.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Login(ctx, "other@example.com", "password123"), repository.ErrUserNotFound)

	_, err = svc.Signup(ctx, application.SignupInput{Email: "new@example.com", Password: "different-pass"})
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)

	assert.Equal(t, []string{repository.KindOK, repository.KindAlreadyExists}, rec.signups)
	assert.Equal(t, []string{repository.KindOK, repository.KindInvalidCredentials, repository.KindNotFound}, rec.logins)
}

func TestSignup_Rejections(t *testing.T) {
	corpus := breach.NewCorpus("password", "password123")

	tests := []struct {
		name    string
		in      application.SignupInput
		wantErr error
		field   string
		outcome string
	}{
		{
			name:    "invalid email",
			in:      application.SignupInput{Email: "input", Password: "correct-horse-battery"},
			wantErr: entity.ErrInvalidEmail,
			field:   "address",
			outcome: application.OutcomeInvalidEmail,
		},
		{
			name:    "short password",
			in:      application.SignupInput{Email: "user@example.com", Password: "short"},
			wantErr: entity.ErrPasswordTooShort,
			field:   "password",
			outcome: application.OutcomeInvalidPassword,
		},
		{
			name:    "breached password",
			in:      application.SignupInput{Email: "user@example.com", Password: "password123"},
			wantErr: entity.ErrPasswordBreached,
			field:   "hibp",
			outcome: application.OutcomeBreached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec, hook := newService(t, corpus)

			_, err := svc.Signup(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)

			var verr *entity.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, []string{tt.outcome}, rec.signups)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.field, entry.Data["field"])
			assert.NotContains(t, entry.Message, tt.in.Password)

			_, err = svc.GetUser(context.Background(), tt.in.Email)
			assert.ErrorIs(t, err, repository.ErrUserNotFound)
		})
	}
}

func TestSignup_BreachTimeoutFailsClosed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := &recorder{}
	svc := application.NewService(memory.NewUserStore(), blockingChecker{}, logger, rec, 10*time.Millisecond)

	_, err := svc.Signup(context.Background(), application.SignupInput{
		Email:    "user@example.com",
		Password: "correct-horse-battery",
	})
	require.ErrorIs(t, err, entity.ErrBreachCheckUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{application.OutcomeBreachUnavailable}, rec.signups)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, context.DeadlineExceeded.Error(), entry.Data["error"])
}

func TestStoreFailuresAreLoggedWithCause(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := &recorder{}
	store := failingStore{err: repository.NewUnexpectedError("insert user", errors.New("disk full"))}
	svc := application.NewService(store, nil, logger, rec, 0)

	_, err := svc.Signup(context.Background(), application.SignupInput{
		Email:    "user@example.com",
		Password: "correct-horse-battery",
	})
	require.ErrorIs(t, err, repository.ErrUnexpected)
	assert.Equal(t, "unexpected error", err.Error())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "disk full", entry.Data["error"])
	assert.Equal(t, "insert user", entry.Data["op"])

	err = svc.Login(context.Background(), "user@example.com", "correct-horse-battery")
	require.ErrorIs(t, err, repository.ErrUnexpected)
	assert.Equal(t, []string{repository.KindUnexpected}, rec.signups)
	assert.Equal(t, []string{repository.KindUnexpected}, rec.logins)
}

func TestNewService_NilRecorder(t *testing.T) {
	svc := application.NewService(memory.NewUserStore(), nil, nil, nil, 0)
	_, err := svc.Signup(context.Background(), application.SignupInput{
		Email:    "user@example.com",
		Password: "correct-horse-battery",
	})
	assert.NoError(t, err)
}
