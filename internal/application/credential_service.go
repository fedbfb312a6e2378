package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	repo "github.com/oksasatya/auth-service/internal/domain/repository"
	"github.com/oksasatya/auth-service/pkg/helpers"
	"github.com/oksasatya/auth-service/pkg/metrics"
)

// Signup outcomes beyond the repository kinds.
const (
	OutcomeInvalidEmail      = "invalid_email"
	OutcomeInvalidPassword   = "invalid_password"
	OutcomeBreached          = "breached"
	OutcomeBreachUnavailable = "breach_unavailable"
)

type Service struct {
	Store   repo.UserStore
	Checker entity.BreachChecker
	Logger  *logrus.Logger
	Metrics metrics.Recorder

	// BreachTimeout bounds password parsing when non-zero.
	BreachTimeout time.Duration
}

func NewService(store repo.UserStore, checker entity.BreachChecker, logger *logrus.Logger, rec metrics.Recorder, breachTimeout time.Duration) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		Store:         store,
		Checker:       checker,
		Logger:        logger,
		Metrics:       rec,
		BreachTimeout: breachTimeout,
	}
}

type SignupInput struct {
	Email       string
	Password    string
	Requires2FA bool
}

// Signup validates raw input and registers the resulting user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (entity.User, error) {
	email, err := entity.ParseEmail(in.Email)
	if err != nil {
		s.rejectSignup(OutcomeInvalidEmail, err, logrus.Fields{"field": fieldOf(err)})
		return entity.User{}, err
	}

	password, err := s.parsePassword(ctx, in.Password)
	if err != nil {
		s.rejectSignup(passwordOutcome(err), err, logrus.Fields{
			"email": email.Address(),
			"field": fieldOf(err),
		})
		return entity.User{}, err
	}

	user := entity.NewUser(email, password, in.Requires2FA)
	if err := s.Store.AddUser(ctx, user); err != nil {
		kind := repo.Kind(err)
		fields := logrus.Fields{"email": email.Address(), "kind": kind}
		var ue *repo.UnexpectedError
		if errors.As(err, &ue) {
			fields["op"] = ue.Op
			helpers.LogError(s.Logger, "signup store failure", ue.Cause(), fields)
		} else {
			helpers.LogInfo(s.Logger, "signup rejected", fields)
		}
		s.Metrics.RecordSignup(kind)
		return entity.User{}, err
	}

	s.Metrics.RecordSignup(repo.KindOK)
	helpers.LogInfo(s.Logger, "user signed up", logrus.Fields{
		"email":        email.Address(),
		"requires_2fa": in.Requires2FA,
	})
	return user, nil
}

func (s *Service) parsePassword(ctx context.Context, raw string) (entity.Password, error) {
	if s.BreachTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.BreachTimeout)
		defer cancel()
	}
	return entity.ParsePassword(ctx, raw, s.Checker)
}

func fieldOf(err error) string {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	return ""
}

func passwordOutcome(err error) string {
	switch {
	case errors.Is(err, entity.ErrPasswordBreached):
		return OutcomeBreached
	case errors.Is(err, entity.ErrBreachCheckUnavailable):
		return OutcomeBreachUnavailable
	default:
		return OutcomeInvalidPassword
	}
}

func (s *Service) rejectSignup(outcome string, err error, fields logrus.Fields) {
	s.Metrics.RecordSignup(outcome)
	fields["outcome"] = outcome
	var verr *entity.ValidationError
	if outcome == OutcomeBreachUnavailable && errors.As(err, &verr) {
		helpers.LogWarn(s.Logger, "breach check failed, rejecting password", verr.Cause(), fields)
		return
	}
	helpers.LogInfo(s.Logger, "signup rejected", fields)
}

// Login checks an email/password pair against the store.
func (s *Service) Login(ctx context.Context, email, password string) error {
	err := s.Store.ValidateUser(ctx, email, password)
	kind := repo.Kind(err)
	s.Metrics.RecordLogin(kind)

	var ue *repo.UnexpectedError
	if errors.As(err, &ue) {
		helpers.LogError(s.Logger, "login store failure", ue.Cause(), logrus.Fields{
			"email": email,
			"op":    ue.Op,
		})
	}
	return err
}

func (s *Service) GetUser(ctx context.Context, email string) (entity.User, error) {
	return s.Store.GetUser(ctx, email)
}
