package gateway

import (
	"path/filepath"
	"testing"

	tomlstore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/toml"
	"github.com/aabid-khan7222/myschool-sub002/internal/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	gateway     *Gateway
	credentials *credentials.Store
	registry    *prometheus.Registry
}

func newTestEnv(t *testing.T, baseURL string, mutate ...func(*Options)) testEnv {
	t.Helper()

	store := credentials.NewStore(tomlstore.NewStore(filepath.Join(t.TempDir(), "credentials.toml")), zerolog.Nop())
	registry := prometheus.NewRegistry()

	opts := Options{
		BuildMode:   "development",
		DefaultURL:  baseURL,
		Credentials: store,
		Logger:      zerolog.Nop(),
		Registerer:  registry,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	gw, err := New(opts)
	require.NoError(t, err)

	return testEnv{gateway: gw, credentials: store, registry: registry}
}
