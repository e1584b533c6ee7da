package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/internal/config"
	boltInfra "github.com/fastygo/tasktracker/internal/infrastructure/bolt"
	"github.com/fastygo/tasktracker/internal/infrastructure/mail"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/tasktracker/internal/infrastructure/sqlite"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
	boltRepo "github.com/fastygo/tasktracker/repository/bolt"
	"github.com/fastygo/tasktracker/repository/postgres"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	"github.com/fastygo/tasktracker/repository/sqlite"
	"github.com/fastygo/tasktracker/usecase"
	"github.com/fastygo/tasktracker/usecase/notify"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	clock  usecase.Clock
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		App:      cfg.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("logger error: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: zapLogger, clock: usecase.SystemClock(loc)}, nil
}

// openStore connects the configured database, applying migrations first when enabled.
func (a *app) openStore(ctx context.Context, migrate bool) (*repository.Store, error) {
	switch a.cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(ctx, a.cfg.Database.SQLitePath, a.logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := sqliteInfra.Migrate(db, a.logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		return sqlite.NewStore(db), nil
	default:
		if migrate {
			if err := pgInfra.RunMigrations(a.cfg, a.logger); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		pool, err := pgInfra.NewPool(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		return postgres.NewStore(pool), nil
	}
}

// sessionStore is the session repository plus an optional housekeeping job.
type sessionStore struct {
	repository.SessionRepository
	cleanup func(ctx context.Context) error
}

func (a *app) openSessions(ctx context.Context) (*sessionStore, error) {
	ttl := a.cfg.Session.TTL
	switch a.cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := redisInfra.NewClient(ctx, a.cfg.Redis, a.logger)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return &sessionStore{SessionRepository: redisRepo.NewSessionRepository(client, ttl)}, nil
	default:
		db, err := boltInfra.Open(a.cfg.Session.BoltPath, a.logger, boltRepo.SessionBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		repo := boltRepo.NewSessionRepository(db, ttl)
		return &sessionStore{
			SessionRepository: repo,
			// Redis expires keys itself; bolt needs a sweep.
			cleanup: func(ctx context.Context) error {
				removed, err := repo.Cleanup(ctx)
				if removed > 0 {
					a.logger.Info("expired sessions removed", zap.Int("count", removed))
				}
				return err
			},
		}, nil
	}
}

func (a *app) notifier(store *repository.Store) *notify.UseCase {
	sender := mail.NewSMTPSender(a.cfg.SMTP, a.logger.Named("mail"))
	return notify.New(store.Todos, store.Settings, sender, a.clock, a.logger.Named("notify"))
}

func (a *app) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, a.cfg.SMTP.Timeout+time.Minute)
}
