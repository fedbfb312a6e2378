package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/auth-service/config"
	"github.com/oksasatya/auth-service/internal/application"
	"github.com/oksasatya/auth-service/internal/container"
	"github.com/oksasatya/auth-service/internal/domain/repository"
	"github.com/oksasatya/auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/auth-service/pkg/helpers"
	"github.com/oksasatya/auth-service/pkg/metrics"
	"github.com/oksasatya/auth-service/pkg/validation"
)

const defaultSeedTimeout = 30 * time.Second

type seedConfig struct {
	email       string
	password    string
	requires2FA bool
	timeout     time.Duration
	skipMigrate bool
}

// NewSeedCmd creates the seed command.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Sign up a user into the configured user store",
		Long: `Runs the regular signup flow (email and password validation, breached-password
check) and stores the user. Re-running with an existing address is not an error.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "demo@example.com", "email address to sign up")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password to sign up with (required)")
	cmd.Flags().BoolVar(&cfg.requires2FA, "requires-2fa", false, "mark the user as requiring a second factor")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for the whole seed run (e.g., 30s, 1m)")
	cmd.Flags().BoolVar(&cfg.skipMigrate, "skip-migrate", false, "do not apply schema migrations before seeding (postgres only)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, sc *seedConfig) error {
	if sc.password == "" {
		return errors.New("--password is required")
	}

	cfg := config.Load()
	logger := helpers.NewLoggerTo(cmd.ErrOrStderr(), cfg.AppName, cfg.Env, cfg.LogLevel)
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMetrics(metrics.NewCollector(prometheus.NewRegistry()))

	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	if cfg.UserStoreBackend == config.BackendPostgres && !sc.skipMigrate {
		if err := postgres.Migrate(cfg.PostgresDSN(), logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	defer closeResources()
	svc, err := container.BuildService(ctx)
	if err != nil {
		return err
	}

	return seedUser(ctx, cmd, svc, sc, logger)
}

func closeResources() {
	if pool := container.GetPGPool(); pool != nil {
		pool.Close()
		container.SetPGPool(nil)
	}
	if db := container.GetSQLiteDB(); db != nil {
		_ = db.Close()
		container.SetSQLiteDB(nil)
	}
	if rdb := container.GetRedis(); rdb != nil {
		_ = rdb.Close()
		container.SetRedis(nil)
	}
}

func seedUser(ctx context.Context, cmd *cobra.Command, svc *application.Service, sc *seedConfig, logger *logrus.Logger) error {
	user, err := svc.Signup(ctx, application.SignupInput{
		Email:       sc.email,
		Password:    sc.password,
		Requires2FA: sc.requires2FA,
	})
	switch {
	case errors.Is(err, repository.ErrUserAlreadyExists):
		cmd.Printf("user already exists: email=%s\n", sc.email)
		return nil
	case err != nil:
		if details := validation.ToDetails(err); details != nil && !errors.Is(err, repository.ErrUnexpected) {
			for field, msg := range details {
				cmd.Printf("rejected: %s %s\n", field, msg)
			}
		}
		helpers.LogError(logger, "seed failed", err, logrus.Fields{"email": sc.email})
		return err
	}

	cmd.Printf("seeded user: email=%s requires_2fa=%t\n", user.Email.Address(), user.Requires2FA)
	return nil
}
