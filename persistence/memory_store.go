package persistence

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/disha18704/cerina-health-assignment/types"
)

// MemoryStateStore is an in-process StateStore for development and tests.
// Snapshots are stored as JSON so Load always returns an independent copy,
// matching the isolation a durable backend provides.
type MemoryStateStore struct {
	mu    sync.RWMutex
	state map[string][]byte
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: make(map[string][]byte)}
}

// Load returns the last snapshot for threadID.
func (s *MemoryStateStore) Load(ctx context.Context, threadID string) (*types.State, error) {
	s.mu.RLock()
	raw, ok := s.state[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(threadID)
	}
	var state types.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, types.NewError(types.ErrInternalError, "decode state snapshot").WithCause(err)
	}
	return &state, nil
}

// Save stores state as the thread's latest snapshot.
func (s *MemoryStateStore) Save(ctx context.Context, threadID string, state *types.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return types.NewError(types.ErrInternalError, "encode state snapshot").WithCause(err)
	}
	s.mu.Lock()
	s.state[threadID] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the thread's snapshot. Deleting an unknown thread is a
// no-op.
func (s *MemoryStateStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	delete(s.state, threadID)
	s.mu.Unlock()
	return nil
}

// Ping reports store health; the in-memory store is always healthy.
func (s *MemoryStateStore) Ping(ctx context.Context) error { return nil }

// Close releases resources; a no-op for the in-memory store.
func (s *MemoryStateStore) Close() error { return nil }
