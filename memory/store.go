package memory

import (
	"context"
	"sync"
	"time"
)

// Record is one row of the embedding index. The normalized query is the
// primary key; re-indexing the same normalized query replaces the row.
type Record struct {
	NormalizedQuery string    `gorm:"primaryKey;column:normalized_query" json:"normalized_query"`
	DraftTitle      string    `gorm:"column:draft_title" json:"draft_title"`
	DraftJSON       []byte    `gorm:"column:draft_content" json:"draft_content"`
	Embedding       []byte    `gorm:"column:embedding" json:"embedding"`
	OriginalQuery   string    `gorm:"column:original_message" json:"original_message"`
	MetadataJSON    []byte    `gorm:"column:metadata" json:"metadata"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName keeps the original schema's table name.
func (Record) TableName() string { return "draft_embeddings" }

// Store is the durable backing of the embedding index. Implementations
// must support concurrent readers and per-row upsert semantics; no
// cross-row transactions are required.
type Store interface {
	Upsert(ctx context.Context, rec *Record) error
	All(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, normalizedQuery string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// InMemoryStore is a Store for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

// Upsert inserts or replaces the record keyed by its normalized query.
func (s *InMemoryStore) Upsert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	r := *rec
	if prev, ok := s.records[r.NormalizedQuery]; ok {
		r.CreatedAt = prev.CreatedAt
	} else {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.records[r.NormalizedQuery] = r
	return nil
}

// All returns every stored record.
func (s *InMemoryStore) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

// Delete removes a record; deleting an absent key is a no-op.
func (s *InMemoryStore) Delete(ctx context.Context, normalizedQuery string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, normalizedQuery)
	return nil
}

// Count returns the number of stored records.
func (s *InMemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
