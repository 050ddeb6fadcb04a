package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/adapters/schoolapi"
	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/spf13/cobra"
)

func newListCmd(app *app) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:       "list RESOURCE",
		Short:     "List the records of a school resource",
		Long:      "List the records of a school resource. Resources: " + strings.Join(resourceNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := schoolapi.ParseResource(args[0])
			if err != nil {
				return err
			}

			return runRequest(cmd, app, requestCall{
				method:   http.MethodGet,
				endpoint: "/" + string(resource),
				do: func(ctx context.Context) (domain.Payload, error) {
					return app.school.List(ctx, resource)
				},
			}, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the raw JSON payload")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print gateway metrics after the request")

	return cmd
}

func resourceNames() []string {
	resources := schoolapi.Resources()
	names := make([]string, 0, len(resources))
	for _, resource := range resources {
		names = append(names, string(resource))
	}
	return names
}

func requireSignedIn(ctx context.Context, app *app) (domain.Credentials, error) {
	creds := app.credentials.Get(ctx)
	if !creds.HasToken() {
		return creds, fmt.Errorf("not signed in: run `sga login` first: %w", domain.ErrUnauthorized)
	}
	return creds, nil
}
