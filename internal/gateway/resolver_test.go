package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const testDefaultURL = "http://localhost:5000/api"

func newManifestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, DefaultManifestPath, r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &hits
}

func TestResolverDevelopmentBuildSkipsManifest(t *testing.T) {
	t.Parallel()

	server, hits := newManifestServer(t, http.StatusOK, `{"apiUrl":"https://api.school.example"}`)
	resolver := NewResolver(ResolverConfig{
		BuildMode:    "development",
		DefaultURL:   testDefaultURL,
		DeployOrigin: server.URL,
		Logger:       zerolog.Nop(),
	})

	assert.Equal(t, testDefaultURL, resolver.Resolve(context.Background()))
	assert.Equal(t, int32(0), hits.Load())
}

func TestResolverProductionUsesManifestOnce(t *testing.T) {
	t.Parallel()

	server, hits := newManifestServer(t, http.StatusOK, `{"apiUrl":"https://api.school.example//"}`)
	metrics := NewMetrics()
	resolver := NewResolver(ResolverConfig{
		BuildMode:    "production",
		DefaultURL:   testDefaultURL,
		DeployOrigin: server.URL + "/",
		HTTPClient:   server.Client(),
		Logger:       zerolog.Nop(),
		Metrics:      metrics,
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, "https://api.school.example/api", resolver.Resolve(context.Background()))
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BaseURLResolutions.WithLabelValues("manifest")))
}

func TestResolverFallsBackAndNeverRetries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"apiUrl":"https://ignored.example"}`},
		{name: "missing field", status: http.StatusOK, body: `{"other":"value"}`},
		{name: "empty field", status: http.StatusOK, body: `{"apiUrl":"  "}`},
		{name: "unparsable body", status: http.StatusOK, body: `<html>`},
		{name: "wrong field type", status: http.StatusOK, body: `{"apiUrl":42}`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server, hits := newManifestServer(t, tc.status, tc.body)
			metrics := NewMetrics()
			resolver := NewResolver(ResolverConfig{
				BuildMode:    "production",
				DefaultURL:   testDefaultURL,
				DeployOrigin: server.URL,
				HTTPClient:   server.Client(),
				Logger:       zerolog.Nop(),
				Metrics:      metrics,
			})

			assert.Equal(t, testDefaultURL, resolver.Resolve(context.Background()))
			assert.Equal(t, testDefaultURL, resolver.Resolve(context.Background()))
			assert.Equal(t, int32(1), hits.Load())
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BaseURLResolutions.WithLabelValues("fallback")))
		})
	}
}

func TestResolverFallsBackOnTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := server.URL
	server.Close()

	resolver := NewResolver(ResolverConfig{
		BuildMode:    "production",
		DefaultURL:   testDefaultURL,
		DeployOrigin: origin,
		Logger:       zerolog.Nop(),
	})

	assert.Equal(t, testDefaultURL, resolver.Resolve(context.Background()))
}

func TestResolverFallsBackWithoutDeployOrigin(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(ResolverConfig{BuildMode: "production", DefaultURL: testDefaultURL})
	assert.Equal(t, testDefaultURL, resolver.Resolve(context.Background()))
}

func TestResolverConcurrentFirstCallsFetchOnce(t *testing.T) {
	t.Parallel()

	server, hits := newManifestServer(t, http.StatusOK, `{"apiUrl":"https://api.school.example/api"}`)
	resolver := NewResolver(ResolverConfig{
		BuildMode:    "production",
		DefaultURL:   testDefaultURL,
		DeployOrigin: server.URL,
		HTTPClient:   server.Client(),
		Logger:       zerolog.Nop(),
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "https://api.school.example/api", resolver.Resolve(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestNormalizeAPIURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "https://school.example", want: "https://school.example/api"},
		{raw: "https://school.example///", want: "https://school.example/api"},
		{raw: "https://school.example/api", want: "https://school.example/api"},
		{raw: "https://school.example/api/", want: "https://school.example/api"},
		{raw: "https://school.example/v2", want: "https://school.example/v2/api"},
		{raw: "   ", want: ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeAPIURL(tc.raw), tc.raw)
	}
}
