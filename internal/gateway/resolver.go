package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aabid-khan7222/myschool-sub002/internal/version"
	"github.com/rs/zerolog"
)

const (
	DefaultManifestPath = "/config.json"
	apiPathSegment      = "/api"
	maxManifestBytes    = 64 << 10
	manifestTimeout     = 10 * time.Second
)

const (
	resolutionSourceDefault  = "default"
	resolutionSourceManifest = "manifest"
	resolutionSourceFallback = "fallback"
)

type ResolverConfig struct {
	// BuildMode selects whether the runtime manifest is consulted; only
	// production builds fetch it.
	BuildMode    string
	DefaultURL   string
	DeployOrigin string
	ManifestPath string
	HTTPClient   *http.Client
	Logger       zerolog.Logger
	Metrics      *Metrics
}

// Resolver determines the API base URL once per instance. Failures fall back
// to the configured default, which is then cached like any other result.
type Resolver struct {
	cfg     ResolverConfig
	once    sync.Once
	baseURL string
}

type runtimeManifest struct {
	APIURL string `json:"apiUrl"`
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestPath
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Resolve(ctx context.Context) string {
	r.once.Do(func() {
		r.baseURL = r.resolve(context.WithoutCancel(ctx))
	})
	return r.baseURL
}

func (r *Resolver) resolve(ctx context.Context) string {
	if !version.IsProduction(r.cfg.BuildMode) {
		r.cfg.Metrics.resolution(resolutionSourceDefault)
		return r.cfg.DefaultURL
	}

	apiURL, err := r.fetchManifest(ctx)
	if err != nil {
		r.cfg.Logger.Debug().Err(err).Str("default", r.cfg.DefaultURL).Msg("runtime manifest unavailable, using default api url")
		r.cfg.Metrics.resolution(resolutionSourceFallback)
		return r.cfg.DefaultURL
	}

	r.cfg.Logger.Debug().Str("api_url", apiURL).Msg("api url resolved from runtime manifest")
	r.cfg.Metrics.resolution(resolutionSourceManifest)
	return apiURL
}

func (r *Resolver) fetchManifest(ctx context.Context) (string, error) {
	if r.cfg.DeployOrigin == "" {
		return "", errors.New("deploy origin is not configured")
	}

	manifestURL := joinURL(strings.TrimRight(r.cfg.DeployOrigin, "/"), r.cfg.ManifestPath)

	requestCtx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return "", fmt.Errorf("create manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch manifest: status %d", resp.StatusCode)
	}

	var manifest runtimeManifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&manifest); err != nil {
		return "", fmt.Errorf("decode manifest: %w", err)
	}

	apiURL := NormalizeAPIURL(manifest.APIURL)
	if apiURL == "" {
		return "", errors.New("manifest missing apiUrl")
	}

	return apiURL, nil
}

// NormalizeAPIURL strips trailing slashes and appends the /api segment when
// it is not already the final path segment.
func NormalizeAPIURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, apiPathSegment) {
		return trimmed
	}
	return trimmed + apiPathSegment
}
