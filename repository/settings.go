package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type SettingsRepository interface {
	LoadEmail(ctx context.Context) (domain.EmailSettings, error)
	// SaveEmail replaces every stored setting in a single transaction.
	SaveEmail(ctx context.Context, settings domain.EmailSettings) error
}
