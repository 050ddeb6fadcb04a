package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/aabid-khan7222/myschool-sub002/internal/adapters/schoolapi"
	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/spf13/cobra"
)

var errNoStoredRole = errors.New("stored user has no role; pass ROLE explicitly")

func newDashboardCmd(app *app) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "dashboard [ROLE]",
		Short: "Fetch the dashboard summary for a role (default: signed-in user's role)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := resolveDashboardRole(cmd.Context(), app, args)
			if err != nil {
				return err
			}

			return runRequest(cmd, app, requestCall{
				method:   http.MethodGet,
				endpoint: "/dashboard/" + string(role),
				do: func(ctx context.Context) (domain.Payload, error) {
					return app.school.Dashboard(ctx, role)
				},
			}, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the raw JSON payload")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print gateway metrics after the request")

	return cmd
}

func resolveDashboardRole(ctx context.Context, app *app, args []string) (domain.Role, error) {
	if len(args) == 1 {
		return schoolapi.ParseRole(args[0])
	}

	creds, err := requireSignedIn(ctx, app)
	if err != nil {
		return "", err
	}
	if creds.User == nil || creds.User.Role == "" {
		return "", errNoStoredRole
	}
	return schoolapi.ParseRole(string(creds.User.Role))
}
