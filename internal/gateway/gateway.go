// Package gateway is the single entry point for talking to the school
// administration API. It resolves the API base URL, collapses concurrent
// identical requests into one network call, attaches the stored bearer token
// and classifies every response into a payload or a typed failure.
//
// Build one Gateway per process and share it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Options struct {
	BuildMode    string
	DefaultURL   string
	DeployOrigin string
	ManifestPath string

	HTTPClient  *http.Client
	Credentials ports.CredentialStore
	Logger      zerolog.Logger
	// Registerer receives the gateway metrics; nil keeps them unregistered.
	Registerer prometheus.Registerer
	// StrictFingerprint deduplicates on a digest of the full body instead of
	// its first 50 characters.
	StrictFingerprint bool
}

// RequestOptions mirrors what a caller controls on a single request. Body is
// serialized as JSON unless it is already []byte or json.RawMessage.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

type Gateway struct {
	resolver    *Resolver
	registry    *Registry
	pipeline    *Pipeline
	notifier    *SessionNotifier
	credentials ports.CredentialStore
	metrics     *Metrics
	logger      zerolog.Logger
	fingerprint func(method string, endpoint string, body []byte) string
}

func New(opts Options) (*Gateway, error) {
	if opts.Credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if opts.DefaultURL == "" {
		return nil, errors.New("default api url is required")
	}

	metrics := NewMetrics()
	if err := metrics.Register(opts.Registerer); err != nil {
		return nil, err
	}

	logger := opts.Logger.With().Str("component", "gateway").Logger()
	notifier := NewSessionNotifier()
	resolver := NewResolver(ResolverConfig{
		BuildMode:    opts.BuildMode,
		DefaultURL:   opts.DefaultURL,
		DeployOrigin: opts.DeployOrigin,
		ManifestPath: opts.ManifestPath,
		HTTPClient:   opts.HTTPClient,
		Logger:       logger,
		Metrics:      metrics,
	})
	classifier := NewClassifier(opts.Credentials, notifier, logger, metrics)

	fingerprint := Fingerprint
	if opts.StrictFingerprint {
		fingerprint = StrictFingerprint
	}

	return &Gateway{
		resolver:    resolver,
		registry:    NewRegistry(metrics),
		pipeline:    NewPipeline(resolver, opts.Credentials, classifier, opts.HTTPClient),
		notifier:    notifier,
		credentials: opts.Credentials,
		metrics:     metrics,
		logger:      logger,
		fingerprint: fingerprint,
	}, nil
}

// Request issues endpoint through the registry and waits for its outcome:
// a JSON payload on success, otherwise one of the domain outcome errors.
func (g *Gateway) Request(ctx context.Context, endpoint string, opts RequestOptions) (domain.Payload, error) {
	future, err := g.Start(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Start registers the request without waiting for it. Requests with equal
// fingerprints that overlap share one network operation.
func (g *Gateway) Start(ctx context.Context, endpoint string, opts RequestOptions) (*Future, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req := PreparedRequest{
		Method:   method,
		Endpoint: endpoint,
		Headers:  opts.Headers,
		Body:     body,
	}
	key := g.fingerprint(method, endpoint, body)

	return g.registry.Dedupe(ctx, key, func(ctx context.Context) (domain.Payload, error) {
		return g.execute(ctx, req)
	}), nil
}

func (g *Gateway) execute(ctx context.Context, req PreparedRequest) (domain.Payload, error) {
	started := time.Now()
	payload, err := g.pipeline.Execute(ctx, req)
	elapsed := time.Since(started)

	outcome := domain.KindOf(err)
	g.metrics.observeRequest(req.Method, string(outcome), elapsed.Seconds())

	event := g.logger.Debug()
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("method", req.Method).
		Str("endpoint", req.Endpoint).
		Str("outcome", string(outcome)).
		Dur("elapsed", elapsed).
		Msg("request settled")

	return payload, err
}

// Subscribe registers a listener for the session-expired signal.
func (g *Gateway) Subscribe(listener ports.SessionListener) func() {
	return g.notifier.Subscribe(listener)
}

func (g *Gateway) BaseURL(ctx context.Context) string {
	return g.resolver.Resolve(ctx)
}

func (g *Gateway) Credentials() ports.CredentialStore {
	return g.credentials
}

func (g *Gateway) Metrics() *Metrics {
	return g.metrics
}

func (g *Gateway) Pending() int {
	return g.registry.Pending()
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
