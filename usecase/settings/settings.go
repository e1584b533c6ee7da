package settings

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type UseCase struct {
	settings repository.SettingsRepository
	logger   *zap.Logger
}

func New(settings repository.SettingsRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{settings: settings, logger: logger}
}

func (uc *UseCase) Email(ctx context.Context) (domain.EmailSettings, error) {
	return uc.settings.LoadEmail(ctx)
}

// SaveEmail replaces the stored configuration as a whole. The credential is
// carried over only when keepPassword is set, so the form never has to echo it
// back; otherwise the submitted password, even an empty one, is what gets stored.
func (uc *UseCase) SaveEmail(ctx context.Context, next domain.EmailSettings, keepPassword bool) error {
	next.Address = strings.TrimSpace(next.Address)
	if keepPassword {
		current, err := uc.settings.LoadEmail(ctx)
		if err != nil {
			return err
		}
		next.Password = current.Password
	}

	if err := uc.settings.SaveEmail(ctx, next); err != nil {
		return err
	}
	uc.logger.Info("email settings saved",
		zap.String("address", next.Address),
		zap.Bool("enabled", next.Enabled))
	return nil
}
