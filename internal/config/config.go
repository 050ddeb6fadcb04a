// Package config loads gateway settings from build-time defaults, an
// optional .env file, ~/.sga/config.toml and SGA_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/aabid-khan7222/myschool-sub002/internal/version"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "SGA"

	BackendTOML  = "toml"
	BackendFile  = "file"
	BackendPass  = "pass"
	BackendChain = "chain"
)

const (
	keyBuildMode         = "build.mode"
	keyAPIDefaultURL     = "api.default_url"
	keyDeployOrigin      = "deploy.origin"
	keyManifestPath      = "deploy.manifest_path"
	keyGatewayTimeout    = "gateway.timeout"
	keyStrictFingerprint = "gateway.strict_fingerprint"
	keyStorageBackend    = "storage.backend"
	keyStoragePath       = "storage.path"
	keyLogLevel          = "log.level"
)

type Config struct {
	Build   BuildConfig   `mapstructure:"build"`
	API     APIConfig     `mapstructure:"api"`
	Deploy  DeployConfig  `mapstructure:"deploy"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type BuildConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=development production"`
}

type APIConfig struct {
	DefaultURL string `mapstructure:"default_url" validate:"required,url"`
}

type DeployConfig struct {
	// Origin hosts the runtime manifest; only production builds read it.
	Origin       string `mapstructure:"origin" validate:"omitempty,url"`
	ManifestPath string `mapstructure:"manifest_path" validate:"required,startswith=/"`
}

type GatewayConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	StrictFingerprint bool          `mapstructure:"strict_fingerprint"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=toml file pass chain"`
	Path    string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
}

var validate = validator.New()

// Load reads configuration rooted at dir, the per-user settings directory.
func Load(v *viper.Viper, dir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyBuildMode, version.Mode)
	v.SetDefault(keyAPIDefaultURL, version.DefaultAPIURL)
	v.SetDefault(keyDeployOrigin, "")
	v.SetDefault(keyManifestPath, "/config.json")
	v.SetDefault(keyGatewayTimeout, 30*time.Second)
	v.SetDefault(keyStrictFingerprint, false)
	v.SetDefault(keyStorageBackend, BackendTOML)
	v.SetDefault(keyStoragePath, dir)
	v.SetDefault(keyLogLevel, "warn")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path, dir)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv exports variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func expandHome(path string, dir string) string {
	if path == "" {
		return dir
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(dir, path)
	}
	return filepath.Clean(path)
}
