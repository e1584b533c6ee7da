package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fastygo/tasktracker/assets"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens (or creates) the SQLite database at path with foreign keys enforced.
// SQLite allows one writer, so the handle is limited to a single connection; this
// also keeps an in-memory database alive for the lifetime of the handle.
func Open(ctx context.Context, path string, logger *zap.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	logger.Info("opened sqlite database", zap.String("path", path))
	return db, nil
}

// Migrate applies the embedded SQLite schema.
func Migrate(db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	src, err := iofs.New(assets.Migrations, assets.SQLiteMigrations)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	// m.Close would close db as well, which the caller still owns.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("database migrations applied",
		zap.String("driver", "sqlite"),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

func dsn(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == MemoryPath {
		return "file::memory:?" + pragmas
	}
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + pragmas
	}
	return "file:" + path + "?" + pragmas
}
