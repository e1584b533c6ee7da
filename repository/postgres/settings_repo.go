package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a Postgres-backed implementation of SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) LoadEmail(ctx context.Context) (domain.EmailSettings, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return domain.EmailSettings{}, fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.EmailSettings{}, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.EmailSettings{}, err
	}
	return emailFromValues(values), nil
}

func (r *settingsRepository) SaveEmail(ctx context.Context, settings domain.EmailSettings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	for key, value := range emailToValues(settings) {
		if _, err := tx.Exec(ctx, `INSERT INTO settings (key, value) VALUES ($1, $2)`, key, value); err != nil {
			return fmt.Errorf("inserting setting %s: %w", key, err)
		}
	}
	return tx.Commit(ctx)
}

func emailFromValues(values map[string]string) domain.EmailSettings {
	enabled, _ := strconv.ParseBool(values[domain.SettingEmailEnabled])
	return domain.EmailSettings{
		Address:  values[domain.SettingEmailAddress],
		Password: values[domain.SettingEmailPassword],
		Enabled:  enabled,
	}
}

func emailToValues(settings domain.EmailSettings) map[string]string {
	return map[string]string{
		domain.SettingEmailAddress:  settings.Address,
		domain.SettingEmailPassword: settings.Password,
		domain.SettingEmailEnabled:  strconv.FormatBool(settings.Enabled),
	}
}
