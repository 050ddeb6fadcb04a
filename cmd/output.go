package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	outcomeadapter "github.com/aabid-khan7222/myschool-sub002/internal/adapters/render/outcome"
	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

type outputOptions struct {
	asJSON      bool
	showMetrics bool
}

type requestCall struct {
	method   string
	endpoint string
	do       func(ctx context.Context) (domain.Payload, error)
}

// runRequest performs call and writes its outcome. A failed outcome is
// rendered first and then returned so the process exits non-zero.
func runRequest(cmd *cobra.Command, app *app, call requestCall, opts outputOptions) error {
	var payload domain.Payload
	started := app.now()

	fetch := func(ctx context.Context) error {
		var err error
		payload, err = call.do(ctx)
		return err
	}

	var err error
	if opts.asJSON {
		err = fetch(cmd.Context())
	} else {
		err = runRequestSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("%s %s", call.method, call.endpoint), app.now, fetch)
	}
	elapsed := app.now().Sub(started)

	app.logger.Debug().
		Str("method", call.method).
		Str("endpoint", call.endpoint).
		Str("outcome", string(domain.KindOf(err))).
		Dur("elapsed", elapsed).
		Msg("request finished")

	if writeErr := writeOutcome(cmd, app, outcomeadapter.Report{
		Method:   call.method,
		Endpoint: call.endpoint,
		Elapsed:  elapsed,
		Payload:  payload,
		Err:      err,
	}, opts.asJSON); writeErr != nil {
		return writeErr
	}

	if opts.showMetrics {
		if metricsErr := writeMetrics(cmd, app); metricsErr != nil {
			return metricsErr
		}
	}

	return err
}

func writeOutcome(cmd *cobra.Command, app *app, report outcomeadapter.Report, asJSON bool) error {
	if asJSON {
		if report.Err != nil {
			return nil
		}
		return writeJSONPayload(cmd, report.Payload)
	}

	rendered, err := app.render(report)
	if err != nil {
		return fmt.Errorf("render outcome: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSONPayload(cmd *cobra.Command, payload domain.Payload) error {
	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	out.WriteByte('\n')

	_, err := out.WriteTo(cmd.OutOrStdout())
	return err
}

func writeMetrics(cmd *cobra.Command, app *app) error {
	families, err := app.metrics.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}
