package container

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/auth-service/config"
	"github.com/oksasatya/auth-service/internal/application"
	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/internal/domain/repository"
	"github.com/oksasatya/auth-service/internal/infrastructure/breach"
	"github.com/oksasatya/auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/auth-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/auth-service/pkg/helpers"
	"github.com/oksasatya/auth-service/pkg/metrics"
)

// app-level container to share constructed components across packages.
// Build* functions assemble credential components from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	sqliteDB    *sql.DB
	redisClient *redis.Client
	recorder    metrics.Recorder
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetSQLiteDB(db *sql.DB)        { sqliteDB = db }
func GetSQLiteDB() *sql.DB          { return sqliteDB }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetMetrics(r metrics.Recorder) { recorder = r }
func GetMetrics() metrics.Recorder {
	if recorder != nil {
		return recorder
	}
	return metrics.Nop{}
}

// BuildUserStore returns the store selected by USER_STORE_BACKEND.
// Durable backends open their connection on first use and keep it in the container.
func BuildUserStore(ctx context.Context) (repository.UserStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("container: config not set")
	}

	switch cfg.UserStoreBackend {
	case config.BackendMemory, "":
		var opts []memory.Option
		if cfg.UnifiedCredentialErrors {
			opts = append(opts, memory.WithUnifiedCredentialErrors())
		}
		return memory.NewUserStore(opts...), nil

	case config.BackendPostgres:
		if pgPool == nil {
			pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), postgres.PoolConfig{
				MaxConns:    cfg.DBMaxConns,
				MinConns:    cfg.DBMinConns,
				MaxConnLife: cfg.DBMaxConnLife,
			})
			if err != nil {
				return nil, fmt.Errorf("postgres: %w", err)
			}
			pgPool = pool
		}
		var opts []postgres.Option
		if cfg.UnifiedCredentialErrors {
			opts = append(opts, postgres.WithUnifiedCredentialErrors())
		}
		return postgres.NewUserStore(pgPool, helpers.NewBcryptHasher(cfg.BcryptCost), opts...), nil

	case config.BackendSQLite:
		if sqliteDB == nil {
			db, err := sqlite.Open(ctx, cfg.SQLitePath)
			if err != nil {
				return nil, fmt.Errorf("sqlite: %w", err)
			}
			sqliteDB = db
		}
		var opts []sqlite.Option
		if cfg.UnifiedCredentialErrors {
			opts = append(opts, sqlite.WithUnifiedCredentialErrors())
		}
		return sqlite.NewUserStore(sqliteDB, helpers.NewBcryptHasher(cfg.BcryptCost), opts...), nil

	default:
		return nil, fmt.Errorf("container: unknown user store backend %q", cfg.UserStoreBackend)
	}
}

// BuildBreachChecker returns nil when the check is disabled.
// A corpus file takes precedence over the remote range API.
func BuildBreachChecker() (entity.BreachChecker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("container: config not set")
	}
	if !cfg.BreachCheckEnabled {
		return nil, nil
	}

	var checker entity.BreachChecker
	if cfg.BreachCorpusFile != "" {
		f, err := os.Open(cfg.BreachCorpusFile)
		if err != nil {
			return nil, fmt.Errorf("open breach corpus: %w", err)
		}
		defer func() { _ = f.Close() }()
		corpus, err := breach.LoadCorpus(f)
		if err != nil {
			return nil, fmt.Errorf("load breach corpus: %w", err)
		}
		helpers.LogInfo(logger, "breach corpus loaded", logrus.Fields{"entries": corpus.Len()})
		checker = corpus
	} else {
		checker = breach.NewHIBPClient(
			&http.Client{Timeout: cfg.BreachCheckTimeout},
			breach.WithEndpoint(cfg.BreachCheckEndpoint),
			breach.WithRateLimit(cfg.BreachCheckRate, 1),
			breach.WithUserAgent(cfg.AppName),
		)
	}

	checker = breach.NewInstrumented(checker, GetMetrics())

	if cfg.BreachCacheEnabled {
		if redisClient == nil {
			redisClient = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		checker = breach.NewCachedChecker(checker, redisClient, cfg.BreachCacheTTL, []byte(cfg.BreachCacheSecret), logger)
	}
	return checker, nil
}

// BuildService wires the credential service from the container.
func BuildService(ctx context.Context) (*application.Service, error) {
	store, err := BuildUserStore(ctx)
	if err != nil {
		return nil, err
	}
	checker, err := BuildBreachChecker()
	if err != nil {
		return nil, err
	}
	return application.NewService(store, checker, logger, GetMetrics(), cfg.BreachCheckTimeout), nil
}
