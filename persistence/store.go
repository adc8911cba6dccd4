// Package persistence provides durable, thread-keyed storage of workflow
// state checkpoints.
//
// Supported backends:
// - Memory: for development and testing (default)
// - SQLite: for single-node production deployments
// - Redis: for distributed production deployments
//
// Every backend guarantees atomic per-call writes and read-your-writes
// within a thread; cross-thread ordering is not required by the engine.
package persistence

import (
	"context"
	"time"

	"github.com/disha18704/cerina-health-assignment/types"
)

// StoreType represents the type of storage backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string        `json:"addr" yaml:"addr"`
	Password  string        `json:"password" yaml:"password"`
	DB        int           `json:"db" yaml:"db"`
	PoolSize  int           `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string        `json:"key_prefix" yaml:"key_prefix"`
	TTL       time.Duration `json:"ttl" yaml:"ttl"`
}

// StoreConfig selects and configures a state store backend.
type StoreConfig struct {
	Type StoreType `json:"type" yaml:"type"`
	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string      `json:"sqlite_path" yaml:"sqlite_path"`
	Redis      RedisConfig `json:"redis" yaml:"redis"`
}

// StateStore persists one state snapshot per thread id. Load returns a
// types.ErrThreadNotFound error for a thread that has never been saved,
// which is a distinct condition from a thread whose saved state simply
// has no draft yet.
type StateStore interface {
	Load(ctx context.Context, threadID string) (*types.State, error)
	Save(ctx context.Context, threadID string, state *types.State) error
	Delete(ctx context.Context, threadID string) error
	Ping(ctx context.Context) error
	Close() error
}

func notFound(threadID string) error {
	return types.NewError(types.ErrThreadNotFound, "thread "+threadID+" not found").WithHTTPStatus(404)
}
