package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "notebook.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg, err := Read(yamlPath)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return cfg, nil
}

// Read applies the same hierarchy as LoadFrom but skips validation.
// Maintenance commands use it since they never sign tokens.
func Read(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "NOTEBOOK_ADDR")
	setDuration(&cfg.Server.ShutdownTimeout, "NOTEBOOK_SHUTDOWN_TIMEOUT")

	setString(&cfg.Database.Path, "NOTEBOOK_DB_PATH")
	setBool(&cfg.Database.InMemory, "NOTEBOOK_DB_IN_MEMORY")
	setString(&cfg.Database.BackupDir, "NOTEBOOK_BACKUP_DIR")

	setString(&cfg.Auth.JWTSecret, "NOTEBOOK_JWT_SECRET")
	setString(&cfg.Auth.Issuer, "NOTEBOOK_JWT_ISSUER")
	setDuration(&cfg.Auth.TokenTTL, "NOTEBOOK_TOKEN_TTL")

	setDuration(&cfg.Cache.ListTTL, "NOTEBOOK_CACHE_LIST_TTL")
	setDuration(&cfg.Cache.AggregateTTL, "NOTEBOOK_CACHE_AGGREGATE_TTL")
	setInt64(&cfg.Cache.MaxCostBytes, "NOTEBOOK_CACHE_MAX_COST")

	setString(&cfg.Logging.Level, "NOTEBOOK_LOG_LEVEL")
	setString(&cfg.Logging.Service, "NOTEBOOK_LOG_SERVICE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if cfg.Database.Path == "" && !cfg.Database.InMemory {
		return errors.New("database.path is required unless database.in_memory is set")
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if cfg.Cache.ListTTL <= 0 || cfg.Cache.AggregateTTL <= 0 {
		return errors.New("cache ttls must be positive")
	}
	if cfg.Cache.MaxCostBytes < 1 {
		return errors.New("cache.max_cost_bytes must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
