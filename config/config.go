// Package config loads application configuration with the precedence
// defaults, then a YAML file, then FOUNDRY_* environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the full application configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" env:"LLM"`
	Store      StoreConfig      `yaml:"store" env:"STORE"`
	Memory     MemoryConfig     `yaml:"memory" env:"MEMORY"`
	Supervisor SupervisorConfig `yaml:"supervisor" env:"SUPERVISOR"`
	Workflow   WorkflowConfig   `yaml:"workflow" env:"WORKFLOW"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
	Metrics    MetricsConfig    `yaml:"metrics" env:"METRICS"`
}

// LLMConfig configures the chat and embedding providers.
type LLMConfig struct {
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	Model          string        `yaml:"model" env:"MODEL"`
	EmbeddingModel string        `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RPS            float64       `yaml:"rps" env:"RPS"`
}

// StoreConfig selects the checkpoint backend.
type StoreConfig struct {
	// Type is one of "memory", "sqlite", "redis".
	Type string `yaml:"type" env:"TYPE"`
	// Path is the sqlite database file for the sqlite backend.
	Path  string      `yaml:"path" env:"PATH"`
	Redis RedisConfig `yaml:"redis" env:"REDIS"`
}

// RedisConfig configures the redis checkpoint backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// MemoryConfig configures the embedding index.
type MemoryConfig struct {
	// Path is the sqlite database file for the vector table. Empty
	// keeps the index in process memory.
	Path      string  `yaml:"path" env:"PATH"`
	Threshold float64 `yaml:"threshold" env:"THRESHOLD"`
	Limit     int     `yaml:"limit" env:"LIMIT"`
}

// SupervisorConfig bounds the drafting/review cycle.
type SupervisorConfig struct {
	MaxIterations int `yaml:"max_iterations" env:"MAX_ITERATIONS"`
	MaxRevisions  int `yaml:"max_revisions" env:"MAX_REVISIONS"`
}

// WorkflowConfig configures the graph runner.
type WorkflowConfig struct {
	MaxSteps int `yaml:"max_steps" env:"MAX_STEPS"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" env:"LEVEL"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Default returns the stock configuration. The LLM API key has no
// default; it must come from the file or the environment.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        60 * time.Second,
			RPS:            5,
		},
		Store: StoreConfig{
			Type: "sqlite",
			Path: "checkpoints.db",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Memory: MemoryConfig{
			Path:      "memory.db",
			Threshold: 0.75,
			Limit:     5,
		},
		Supervisor: SupervisorConfig{
			MaxIterations: 8,
			MaxRevisions:  3,
		},
		Workflow: WorkflowConfig{
			MaxSteps: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "foundry",
		},
	}
}

// Validate fails fast on configuration that would only surface as a
// runtime error later. Missing LLM credentials are rejected here so the
// application never starts in a silently degraded mode.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set FOUNDRY_LLM_API_KEY)")
	}
	switch c.Store.Type {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("store.type %q is not one of memory, sqlite, redis", c.Store.Type)
	}
	if c.Store.Type == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite backend")
	}
	if c.Store.Type == "redis" && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}
	if c.Memory.Threshold < -1 || c.Memory.Threshold > 1 {
		return fmt.Errorf("memory.threshold %v is outside [-1, 1]", c.Memory.Threshold)
	}
	if c.Memory.Limit <= 0 {
		return fmt.Errorf("memory.limit must be positive")
	}
	if c.Supervisor.MaxIterations <= 0 || c.Supervisor.MaxRevisions <= 0 {
		return fmt.Errorf("supervisor ceilings must be positive")
	}
	if c.Workflow.MaxSteps <= 0 {
		return fmt.Errorf("workflow.max_steps must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, console", c.Log.Format)
	}
	return nil
}
