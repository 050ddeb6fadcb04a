package cmd

import (
	"context"
	"fmt"

	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/spf13/cobra"
)

const sessionExpiredHint = "session expired: run `sga login` to sign in again"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sga",
		Short:         "School API gateway client (sga)",
		Long:          "sga talks to the school-management REST API through a deduplicating request gateway: it resolves the API base URL, keeps the bearer session, and classifies every response.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		app.gateway.Subscribe(ports.SessionListenerFunc(func(_ context.Context) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), sessionExpiredHint)
		}))
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRequestCmd(app),
		newListCmd(app),
		newDashboardCmd(app),
	)

	return rootCmd
}
