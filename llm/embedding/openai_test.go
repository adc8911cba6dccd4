package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disha18704/cerina-health-assignment/types"
)

func embeddingServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
			time.Sleep(50 * time.Millisecond) // widen the coalescing window
		}
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": []float64{1, 0, float64(i)}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrAuthentication))
}

func TestEmbedDocumentsBatch(t *testing.T) {
	srv := embeddingServer(t, nil)
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: srv.URL, Dimensions: 3})
	require.NoError(t, err)

	vectors, err := p.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 0, 0}, vectors[0])
	assert.Equal(t, []float64{1, 0, 1}, vectors[1])
	assert.Equal(t, 3, p.Dimensions())
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	p, err := NewOpenAIProvider(Config{APIKey: "k"})
	require.NoError(t, err)
	vectors, err := p.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedQueryCoalescesIdenticalRequests(t *testing.T) {
	var requests atomic.Int64
	srv := embeddingServer(t, &requests)
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.EmbedQuery(context.Background(), "same text")
			assert.NoError(t, err)
			assert.Equal(t, []float64{1, 0, 0}, v)
		}()
	}
	wg.Wait()
	assert.Less(t, requests.Load(), int64(8), "identical in-flight queries must coalesce")
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.EmbedDocuments(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUpstreamError))
}
