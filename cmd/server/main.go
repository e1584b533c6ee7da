package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Personal task tracker with a due-today email digest",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the web application and the reminder scheduler",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "notify",
			Short: "Run one reminder scan now",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runNotify(cmd.Context(), cmd)
			},
		},
		&cobra.Command{
			Use:   "send-test",
			Short: "Send a test email with the stored settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSendTest(cmd.Context(), cmd)
			},
		},
	)
	return root
}
