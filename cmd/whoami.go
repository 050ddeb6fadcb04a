package cmd

import (
	"encoding/json"
	"fmt"

	outcomeadapter "github.com/aabid-khan7222/myschool-sub002/internal/adapters/render/outcome"
	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/spf13/cobra"
)

type whoamiOutput struct {
	SignedIn bool         `json:"signed_in"`
	BaseURL  string       `json:"base_url"`
	User     *domain.User `json:"user,omitempty"`
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.credentials.Get(cmd.Context())
			baseURL := app.gateway.BaseURL(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(whoamiOutput{
					SignedIn: creds.HasToken(),
					BaseURL:  baseURL,
					User:     creds.User,
				})
			}

			rendered, err := app.renderSession(outcomeadapter.SessionReport{
				Credentials: creds,
				BaseURL:     baseURL,
			})
			if err != nil {
				return fmt.Errorf("render session: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
