package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

// Result reports what one scan did.
type Result struct {
	Date    string  `json:"date"`
	Cohort  []int64 `json:"cohort"`
	Sent    bool    `json:"sent"`
	Skipped string  `json:"skipped,omitempty"`
}

type UseCase struct {
	todos    repository.TodoRepository
	settings repository.SettingsRepository
	mailer   usecase.Mailer
	clock    usecase.Clock
	logger   *zap.Logger
}

func New(todos repository.TodoRepository, settings repository.SettingsRepository, mailer usecase.Mailer, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:    todos,
		settings: settings,
		mailer:   mailer,
		clock:    clock,
		logger:   logger,
	}
}

// Scan sends one digest for every incomplete todo due today that has not been
// reminded today, then stamps them. The stamp is written only after the relay
// accepted the message; on any failure the cohort stays eligible for the next scan.
func (uc *UseCase) Scan(ctx context.Context) (Result, error) {
	today := uc.clock.Today()
	result := Result{Date: today.Format(domain.DateLayout)}

	due, err := uc.todos.ListDueUnnotified(ctx, today)
	if err != nil {
		return result, err
	}
	if len(due) == 0 {
		result.Skipped = "nothing due"
		uc.logger.Debug("notification scan found nothing due", zap.String("date", result.Date))
		return result, nil
	}

	ids := make([]int64, 0, len(due))
	for _, t := range due {
		ids = append(ids, t.ID)
	}
	result.Cohort = ids

	settings, err := uc.settings.LoadEmail(ctx)
	if err != nil {
		return result, err
	}
	if err := settings.Ready(); err != nil {
		result.Skipped = err.Error()
		uc.logger.Info("notification scan skipped",
			zap.String("date", result.Date),
			zap.Int("cohort_size", len(ids)),
			zap.String("reason", result.Skipped))
		return result, err
	}

	msg, err := Digest(settings.Address, today, due)
	if err != nil {
		return result, err
	}
	msg.Date = uc.clock.Now()

	if err := uc.mailer.Send(ctx, settings, msg); err != nil {
		uc.logger.Warn("digest dispatch failed; cohort left for retry",
			zap.String("date", result.Date),
			zap.Int("cohort_size", len(ids)),
			zap.Error(err))
		return result, domain.WrapError(domain.ErrCodeUnavailable, "failed to send reminder email", err)
	}
	result.Sent = true

	if err := uc.todos.MarkNotified(ctx, ids, today); err != nil {
		uc.logger.Error("digest sent but stamping failed; cohort may be reminded again",
			zap.String("date", result.Date),
			zap.Int64s("todo_ids", ids),
			zap.Error(err))
		return result, err
	}

	uc.logger.Info("digest sent",
		zap.String("date", result.Date),
		zap.Int("cohort_size", len(ids)))
	return result, nil
}

// SendTest sends a fixed message with the stored settings. Disabled or
// incomplete settings fail without touching the transport.
func (uc *UseCase) SendTest(ctx context.Context) error {
	settings, err := uc.settings.LoadEmail(ctx)
	if err != nil {
		return err
	}
	if err := settings.Ready(); err != nil {
		return err
	}

	if err := uc.mailer.Send(ctx, settings, TestMessage(settings.Address, uc.clock.Now())); err != nil {
		uc.logger.Warn("test email failed", zap.Error(err))
		return domain.WrapError(domain.ErrCodeUnavailable, "failed to send test email", err)
	}
	uc.logger.Info("test email sent", zap.String("address", settings.Address))
	return nil
}

// IsSkip reports whether err only means the email settings made a scan a no-op.
func IsSkip(err error) bool {
	return errors.Is(err, domain.ErrNotificationsDisabled) || errors.Is(err, domain.ErrEmailNotConfigured)
}
