package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type configOutput struct {
	ConfigDir         string `json:"config_dir"`
	BuildMode         string `json:"build_mode"`
	DefaultAPIURL     string `json:"default_api_url"`
	ResolvedAPIURL    string `json:"resolved_api_url"`
	DeployOrigin      string `json:"deploy_origin,omitempty"`
	ManifestPath      string `json:"manifest_path"`
	Timeout           string `json:"timeout"`
	StrictFingerprint bool   `json:"strict_fingerprint"`
	StorageBackend    string `json:"storage_backend"`
	StoragePath       string `json:"storage_path"`
	CredentialsAt     string `json:"credentials_location"`
	LogLevel          string `json:"log_level"`
}

func newConfigCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and resolved API base URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := configOutput{
				ConfigDir:         app.configDir,
				BuildMode:         app.cfg.Build.Mode,
				DefaultAPIURL:     app.cfg.API.DefaultURL,
				ResolvedAPIURL:    app.gateway.BaseURL(cmd.Context()),
				DeployOrigin:      app.cfg.Deploy.Origin,
				ManifestPath:      app.cfg.Deploy.ManifestPath,
				Timeout:           app.cfg.Gateway.Timeout.String(),
				StrictFingerprint: app.cfg.Gateway.StrictFingerprint,
				StorageBackend:    app.cfg.Storage.Backend,
				StoragePath:       app.cfg.Storage.Path,
				CredentialsAt:     app.storageAt,
				LogLevel:          app.cfg.Log.Level,
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"config dir", out.ConfigDir},
				{"build mode", out.BuildMode},
				{"default api url", out.DefaultAPIURL},
				{"resolved api url", out.ResolvedAPIURL},
				{"deploy origin", out.DeployOrigin},
				{"manifest path", out.ManifestPath},
				{"timeout", out.Timeout},
				{"strict fingerprint", fmt.Sprint(out.StrictFingerprint)},
				{"storage backend", out.StorageBackend},
				{"storage path", out.StoragePath},
				{"credentials", out.CredentialsAt},
				{"log level", out.LogLevel},
			}
			for _, row := range rows {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
