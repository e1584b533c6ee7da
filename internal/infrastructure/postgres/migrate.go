package postgres

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/assets"
	"github.com/fastygo/tasktracker/internal/config"
)

// RunMigrations applies the embedded Postgres schema when enabled in configuration.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(assets.Migrations, assets.PostgresMigrations)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Database.Name, driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info("database migrations applied",
		zap.String("driver", config.DriverPostgres),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
