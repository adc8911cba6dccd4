package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/internal/metrics"
	"github.com/disha18704/cerina-health-assignment/types"
)

// Embedder produces a fixed-dimension vector for a piece of text. The
// index treats it as a stateless, reentrant external capability.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Search defaults, matching the original store's deliberately strict
// threshold.
const (
	DefaultThreshold = 0.75
	DefaultLimit     = 5
)

// SearchResult is one ranked match.
type SearchResult struct {
	Key           string               `json:"key"`
	Title         string               `json:"title"`
	OriginalQuery string               `json:"original_query"`
	Draft         types.ExerciseDraft  `json:"draft"`
	Metadata      types.ReviewMetadata `json:"metadata"`
	Similarity    float64              `json:"similarity"`
}

// Index ties a Store and an Embedder into the ingest/query API.
type Index struct {
	store     Store
	embedder  Embedder
	logger    *zap.Logger
	collector *metrics.Collector
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLogger sets the index logger.
func WithLogger(logger *zap.Logger) IndexOption {
	return func(ix *Index) { ix.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) IndexOption {
	return func(ix *Index) { ix.collector = c }
}

// NewIndex creates an Index over the given store and embedder.
func NewIndex(store Store, embedder Embedder, opts ...IndexOption) *Index {
	ix := &Index{
		store:    store,
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexDraft embeds the draft's content (title, body, instructions — not
// the query, so retrieval matches on exercise content regardless of how
// the request was phrased) and upserts it under the normalized query
// key. Returns the key. Identical normalized queries replace the prior
// record entirely.
func (ix *Index) IndexDraft(ctx context.Context, originalQuery string, draft types.ExerciseDraft, meta *types.ReviewMetadata) (string, error) {
	key := Normalize(originalQuery)
	if key == "" {
		return "", types.NewError(types.ErrInvalidRequest, "original query normalizes to an empty key")
	}

	searchable := strings.Join([]string{draft.Title, draft.Content, draft.Instructions}, " ")
	vector, err := ix.embedder.EmbedQuery(ctx, searchable)
	if err != nil {
		return "", fmt.Errorf("embed draft content: %w", err)
	}

	embJSON, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	metaJSON := []byte("{}")
	if meta != nil {
		if metaJSON, err = json.Marshal(meta); err != nil {
			return "", fmt.Errorf("encode metadata: %w", err)
		}
	}

	rec := &Record{
		NormalizedQuery: key,
		DraftTitle:      draft.Title,
		DraftJSON:       draftJSON,
		Embedding:       embJSON,
		OriginalQuery:   originalQuery,
		MetadataJSON:    metaJSON,
	}
	if err := ix.store.Upsert(ctx, rec); err != nil {
		return "", err
	}
	ix.collector.MemoryIndexed()
	ix.logger.Info("draft indexed", zap.String("key", key), zap.String("title", draft.Title))
	return key, nil
}

// Search embeds the query, exact-scans all stored records, keeps those
// at or above threshold, applies the topic guard, and returns up to
// limit results ranked by similarity descending. Zero surviving
// candidates is an empty list, not an error. A record that fails to
// decode is skipped so one corrupt row never poisons the scan.
func (ix *Index) Search(ctx context.Context, query string, limit int, threshold float64) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVector, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := ix.store.All(ctx)
	if err != nil {
		return nil, err
	}

	// Topics come preferentially from the original request text, not the
	// draft body: editing may drift a draft away from the original ask.
	queryTopics := ExtractTopics(query)

	results := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		var stored []float64
		if err := json.Unmarshal(rec.Embedding, &stored); err != nil {
			ix.logger.Warn("skipping record with malformed embedding",
				zap.String("key", rec.NormalizedQuery), zap.Error(err))
			continue
		}

		similarity := CosineSimilarity(queryVector, stored)
		if similarity < threshold {
			continue
		}

		if len(queryTopics) > 0 {
			recordTopics := ExtractTopics(rec.OriginalQuery + " " + rec.DraftTitle)
			if !topicsIntersect(queryTopics, recordTopics) {
				continue
			}
		}

		var draft types.ExerciseDraft
		if err := json.Unmarshal(rec.DraftJSON, &draft); err != nil {
			ix.logger.Warn("skipping record with malformed draft payload",
				zap.String("key", rec.NormalizedQuery), zap.Error(err))
			continue
		}
		var meta types.ReviewMetadata
		if len(rec.MetadataJSON) > 0 {
			// Metadata is advisory; a bad blob downgrades to zero values.
			_ = json.Unmarshal(rec.MetadataJSON, &meta)
		}

		results = append(results, SearchResult{
			Key:           rec.NormalizedQuery,
			Title:         rec.DraftTitle,
			OriginalQuery: rec.OriginalQuery,
			Draft:         draft,
			Metadata:      meta,
			Similarity:    similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}

	ix.collector.MemoryLookup(len(results) > 0)
	return results, nil
}

// Delete removes the record for the given (unnormalized) query text.
// Deleting a key that does not exist is a no-op, not an error.
func (ix *Index) Delete(ctx context.Context, query string) error {
	return ix.store.Delete(ctx, Normalize(query))
}
