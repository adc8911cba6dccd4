package persistence

import (
	"fmt"

	"go.uber.org/zap"
)

// NewStateStore creates a StateStore for the configured backend.
func NewStateStore(cfg StoreConfig, logger *zap.Logger) (StateStore, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemoryStateStore(), nil
	case StoreTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite state store requires a database path")
		}
		return NewGormStateStore(cfg.SQLitePath, logger)
	case StoreTypeRedis:
		return NewRedisStateStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported state store type: %s", cfg.Type)
	}
}
