package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/disha18704/cerina-health-assignment/types"
)

// RedisStateStore is a Redis-based StateStore for distributed
// deployments. One key per thread; SET is atomic, which is all the
// single-writer-per-thread discipline requires.
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStateStore connects to Redis and verifies the connection.
func NewRedisStateStore(cfg RedisConfig) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "foundry:"
	}
	return &RedisStateStore{
		client:    client,
		keyPrefix: keyPrefix + "state:",
		ttl:       cfg.TTL,
	}, nil
}

func (s *RedisStateStore) key(threadID string) string {
	return s.keyPrefix + threadID
}

// Load returns the last snapshot for threadID.
func (s *RedisStateStore) Load(ctx context.Context, threadID string) (*types.State, error) {
	raw, err := s.client.Get(ctx, s.key(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(threadID)
	}
	if err != nil {
		return nil, fmt.Errorf("load state from redis: %w", err)
	}
	var state types.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, types.NewError(types.ErrInternalError, "decode state snapshot").WithCause(err)
	}
	return &state, nil
}

// Save stores state as the thread's latest snapshot.
func (s *RedisStateStore) Save(ctx context.Context, threadID string, state *types.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return types.NewError(types.ErrInternalError, "encode state snapshot").WithCause(err)
	}
	if err := s.client.Set(ctx, s.key(threadID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save state to redis: %w", err)
	}
	return nil
}

// Delete removes the thread's snapshot; unknown threads are a no-op.
func (s *RedisStateStore) Delete(ctx context.Context, threadID string) error {
	return s.client.Del(ctx, s.key(threadID)).Err()
}

// Ping checks Redis connectivity.
func (s *RedisStateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}
