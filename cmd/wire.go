package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	outcomeadapter "github.com/aabid-khan7222/myschool-sub002/internal/adapters/render/outcome"
	"github.com/aabid-khan7222/myschool-sub002/internal/adapters/schoolapi"
	chainstore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/chain"
	filestore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/file"
	passstore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/pass"
	tomlstore "github.com/aabid-khan7222/myschool-sub002/internal/adapters/storage/toml"
	"github.com/aabid-khan7222/myschool-sub002/internal/config"
	"github.com/aabid-khan7222/myschool-sub002/internal/credentials"
	"github.com/aabid-khan7222/myschool-sub002/internal/gateway"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	passPrefix        = "sga"
	credentialsFile   = "credentials.toml"
	fileStoreDir      = "secrets"
	defaultConfigPath = ".sga"
)

type app struct {
	cfg           config.Config
	configDir     string
	storageAt     string
	logger        zerolog.Logger
	metrics       *prometheus.Registry
	gateway       *gateway.Gateway
	credentials   ports.CredentialStore
	school        *schoolapi.Client
	render        func(outcomeadapter.Report) (string, error)
	renderSession func(outcomeadapter.SessionReport) (string, error)
	now           func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := envOrDefault("SGA_HOME", filepath.Join(homeDir, defaultConfigPath))
	if err := config.LoadDotEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg, err := config.Load(viper.New(), configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, os.Stderr)
	if err != nil {
		return nil, err
	}

	storage, location, err := newStorage(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("wire credential storage: %w", err)
	}
	creds := credentials.NewStore(storage, logger)

	registry := prometheus.NewRegistry()
	gw, err := gateway.New(gateway.Options{
		BuildMode:         cfg.Build.Mode,
		DefaultURL:        cfg.API.DefaultURL,
		DeployOrigin:      cfg.Deploy.Origin,
		ManifestPath:      cfg.Deploy.ManifestPath,
		HTTPClient:        &http.Client{Timeout: cfg.Gateway.Timeout},
		Credentials:       creds,
		Logger:            logger,
		Registerer:        registry,
		StrictFingerprint: cfg.Gateway.StrictFingerprint,
	})
	if err != nil {
		return nil, fmt.Errorf("wire gateway: %w", err)
	}

	return &app{
		cfg:           cfg,
		configDir:     configDir,
		storageAt:     location,
		logger:        logger,
		metrics:       registry,
		gateway:       gw,
		credentials:   creds,
		school:        schoolapi.NewClient(gw, creds),
		render:        outcomeadapter.Render,
		renderSession: outcomeadapter.RenderSession,
		now:           time.Now,
	}, nil
}

func newLogger(level string, out io.Writer) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		Level(parsed).
		With().
		Timestamp().
		Logger(), nil
}

// newStorage builds the configured credential backend and describes where it
// keeps its data.
func newStorage(cfg config.StorageConfig, logger zerolog.Logger) (ports.Storage, string, error) {
	document := tomlstore.NewStore(filepath.Join(cfg.Path, credentialsFile))
	passLocation := "pass:" + passPrefix

	switch cfg.Backend {
	case config.BackendTOML:
		return document, document.Path(), nil
	case config.BackendFile:
		dir := filepath.Join(cfg.Path, fileStoreDir)
		return filestore.NewStore(dir), dir, nil
	case config.BackendPass:
		return passstore.NewStore(passPrefix), passLocation, nil
	case config.BackendChain:
		store, err := chainstore.NewStore(passstore.NewStore(passPrefix), document, logger)
		if err != nil {
			return nil, "", err
		}
		return store, passLocation + ", fallback " + document.Path(), nil
	default:
		return nil, "", fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
