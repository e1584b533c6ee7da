package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type settingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository returns a SQLite-backed implementation of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) LoadEmail(ctx context.Context) (domain.EmailSettings, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return domain.EmailSettings{}, fmt.Errorf("loading settings: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	enabled, _ := strconv.ParseBool(values[domain.SettingEmailEnabled])
	return domain.EmailSettings{
		Address:  values[domain.SettingEmailAddress],
		Password: values[domain.SettingEmailPassword],
		Enabled:  enabled,
	}, nil
}

func (r *settingsRepository) SaveEmail(ctx context.Context, settings domain.EmailSettings) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}

	values := map[string]string{
		domain.SettingEmailAddress:  settings.Address,
		domain.SettingEmailPassword: settings.Password,
		domain.SettingEmailEnabled:  strconv.FormatBool(settings.Enabled),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("inserting setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
