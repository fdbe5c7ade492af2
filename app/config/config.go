// Package config provides hierarchical configuration loading.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the notebook service.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
}

// Server holds HTTP server configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database holds Badger configuration.
type Database struct {
	Path      string `yaml:"path"`
	InMemory  bool   `yaml:"in_memory"`
	BackupDir string `yaml:"backup_dir"`
}

// Auth holds token signing configuration.
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Cache holds response cache configuration.
type Cache struct {
	ListTTL      time.Duration `yaml:"list_ttl"`      // list-query results
	AggregateTTL time.Duration `yaml:"aggregate_ttl"` // categories and tags
	MaxCostBytes int64         `yaml:"max_cost_bytes"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Defaults returns a Config with sensible defaults for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			Path:      "data/badger",
			BackupDir: "data/backups",
		},
		Auth: Auth{
			Issuer:   "notebook",
			TokenTTL: 24 * time.Hour,
		},
		Cache: Cache{
			ListTTL:      30 * time.Second,
			AggregateTTL: 5 * time.Minute,
			MaxCostBytes: 64 << 20,
		},
		Logging: Logging{
			Level:   "info",
			Service: "notebook",
		},
	}
}
