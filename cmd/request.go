package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/gateway"
	"github.com/spf13/cobra"
)

var errInvalidRequestBody = errors.New("--data must be valid JSON")

var requestMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

func newRequestCmd(app *app) *cobra.Command {
	var data string
	var headers map[string]string
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "request [METHOD] PATH",
		Short: "Send a request to an API endpoint through the gateway",
		Example: `  sga request /students
  sga request POST /notices --data '{"title":"Closed Friday"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, endpoint, err := parseRequestArgs(args)
			if err != nil {
				return err
			}

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errInvalidRequestBody
				}
				body = json.RawMessage(data)
			}

			return runRequest(cmd, app, requestCall{
				method:   method,
				endpoint: endpoint,
				do: func(ctx context.Context) (domain.Payload, error) {
					return app.gateway.Request(ctx, endpoint, gateway.RequestOptions{
						Method:  method,
						Headers: headers,
						Body:    body,
					})
				},
			}, opts)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Extra request header as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the raw JSON payload")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print gateway metrics after the request")

	return cmd
}

func parseRequestArgs(args []string) (string, string, error) {
	if len(args) == 1 {
		return http.MethodGet, normalizeEndpoint(args[0]), nil
	}

	method := strings.ToUpper(strings.TrimSpace(args[0]))
	for _, known := range requestMethods {
		if method == known {
			return method, normalizeEndpoint(args[1]), nil
		}
	}

	return "", "", fmt.Errorf("unsupported method %q", args[0])
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.HasPrefix(endpoint, "/") {
		return "/" + endpoint
	}
	return endpoint
}
