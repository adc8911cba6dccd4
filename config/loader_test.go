package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithKeyFromEnv(t *testing.T) {
	t.Setenv("FOUNDRY_LLM_API_KEY", "sk-test")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, 0.75, cfg.Memory.Threshold)
	assert.Equal(t, 8, cfg.Supervisor.MaxIterations)
	assert.Equal(t, 50, cfg.Workflow.MaxSteps)
}

func TestLoadMissingAPIKeyFailsFast(t *testing.T) {
	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.api_key")
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("FOUNDRY_LLM_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  model: gpt-4o
  timeout: 30s
store:
  type: redis
  redis:
    addr: redis.internal:6379
memory:
  threshold: 0.8
log:
  format: console
`), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 0.8, cfg.Memory.Threshold)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel, "unset fields keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("FOUNDRY_LLM_API_KEY", "sk-test")
	t.Setenv("FOUNDRY_LLM_MODEL", "gpt-4-turbo")
	t.Setenv("FOUNDRY_STORE_TYPE", "memory")
	t.Setenv("FOUNDRY_MEMORY_THRESHOLD", "0.9")
	t.Setenv("FOUNDRY_SUPERVISOR_MAX_REVISIONS", "5")
	t.Setenv("FOUNDRY_METRICS_ENABLED", "false")
	t.Setenv("FOUNDRY_LLM_TIMEOUT", "90s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o\n"), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo", cfg.LLM.Model, "env beats file")
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 0.9, cfg.Memory.Threshold)
	assert.Equal(t, 5, cfg.Supervisor.MaxRevisions)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("FOUNDRY_LLM_API_KEY", "sk-test")

	cfg, err := NewLoader().WithConfigPath("/does/not/exist.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Type)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv("FOUNDRY_LLM_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a mapping"), 0o600))

	_, err := NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.LLM.APIKey = "sk-test"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown store type", func(c *Config) { c.Store.Type = "postgres" }, "store.type"},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"redis without addr", func(c *Config) { c.Store.Type = "redis"; c.Store.Redis.Addr = "" }, "store.redis.addr"},
		{"threshold out of range", func(c *Config) { c.Memory.Threshold = 1.5 }, "memory.threshold"},
		{"non-positive limit", func(c *Config) { c.Memory.Limit = 0 }, "memory.limit"},
		{"non-positive ceiling", func(c *Config) { c.Supervisor.MaxRevisions = 0 }, "supervisor"},
		{"non-positive max steps", func(c *Config) { c.Workflow.MaxSteps = -1 }, "max_steps"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
