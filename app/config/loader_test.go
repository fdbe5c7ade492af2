package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/badger", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Less(t, cfg.Cache.ListTTL, cfg.Cache.AggregateTTL)
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  addr: ":9090"
database:
  in_memory: true
cache:
  list_ttl: 10s
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o644))

	cfg := Defaults()
	require.NoError(t, loadYAML(&cfg, yamlPath))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Database.InMemory)
	assert.Equal(t, 10*time.Second, cfg.Cache.ListTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unchanged fields keep defaults
	assert.Equal(t, 5*time.Minute, cfg.Cache.AggregateTTL)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, loadYAML(&cfg, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadYAMLInvalid(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server: [unclosed"), 0o644))

	cfg := Defaults()
	assert.Error(t, loadYAML(&cfg, yamlPath))
}

func TestEnvOverridesYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "test.yaml")
	content := `
server:
  addr: ":9090"
auth:
  jwt_secret: "from-yaml-secret-value"
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o644))

	t.Setenv("NOTEBOOK_ADDR", ":7070")
	t.Setenv("NOTEBOOK_JWT_SECRET", testSecret)
	t.Setenv("NOTEBOOK_CACHE_AGGREGATE_TTL", "2m")
	t.Setenv("NOTEBOOK_DB_IN_MEMORY", "true")
	t.Setenv("NOTEBOOK_CACHE_MAX_COST", "not-a-number")

	cfg, err := LoadFrom(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Minute, cfg.Cache.AggregateTTL)
	assert.True(t, cfg.Database.InMemory)
	assert.Equal(t, int64(64<<20), cfg.Cache.MaxCostBytes, "unparsable env values are ignored")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Defaults()
		cfg.Auth.JWTSecret = testSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret"},
		{name: "missing addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "in-memory without path", mutate: func(c *Config) { c.Database.Path = ""; c.Database.InMemory = true }},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.ListTTL = 0 }, wantErr: "cache ttls"},
		{name: "zero token ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: "token_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("NOTEBOOK_JWT_SECRET", "")
	t.Setenv("NOTEBOOK_DB_PATH", "/tmp/notebook-read")

	cfg, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notebook-read", cfg.Database.Path)
	assert.Empty(t, cfg.Auth.JWTSecret)

	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
