package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/usecase/notify"
)

func runMigrate(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	a.cfg.Migrations.Enabled = true
	store, err := a.openStore(ctx, true)
	if err != nil {
		return err
	}
	return store.Close()
}

func runNotify(ctx context.Context, cmd *cobra.Command) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	store, err := a.openStore(ctx, a.cfg.Migrations.Enabled)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := a.notifier(store).Scan(ctx)
	switch {
	case err == nil:
	case notify.IsSkip(err):
		a.logger.Info("reminder scan skipped", zap.Error(err))
		return nil
	default:
		return err
	}

	if !result.Sent {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: nothing due\n", result.Date)
		return nil
	}
	ids := make([]string, len(result.Cohort))
	for i, id := range result.Cohort {
		ids[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: reminder sent for %d task(s) [%s]\n", result.Date, len(ids), strings.Join(ids, ", "))
	return nil
}

func runSendTest(ctx context.Context, cmd *cobra.Command) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	store, err := a.openStore(ctx, a.cfg.Migrations.Enabled)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := a.notifier(store).SendTest(ctx); err != nil {
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			return fmt.Errorf("test email not sent: %s", dErr.Message)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "test email sent")
	return nil
}
