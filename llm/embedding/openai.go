package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/disha18704/cerina-health-assignment/types"
)

const (
	defaultEmbeddingBaseURL = "https://api.openai.com/v1"
	defaultEmbeddingModel   = "text-embedding-3-small"
	defaultDimensions       = 1536
)

// Config configures the OpenAI-compatible embedding provider.
type Config struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Model      string        `json:"model" yaml:"model"`
	Dimensions int           `json:"dimensions" yaml:"dimensions"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	// RPS caps outbound requests per second; 0 disables the limiter.
	RPS float64 `json:"rps" yaml:"rps"`
}

// OpenAIProvider talks to any OpenAI-compatible embeddings API.
// Concurrent EmbedQuery calls for identical text are coalesced into one
// upstream request.
type OpenAIProvider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	limiter    *rate.Limiter
	group      singleflight.Group
}

// NewOpenAIProvider creates the provider; a missing API key fails fast.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, types.NewError(types.ErrAuthentication, "embedding api key is not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultEmbeddingBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultEmbeddingModel
	}
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = defaultDimensions
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return &OpenAIProvider{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dimensions,
		limiter:    limiter,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// Dimensions returns the embedding dimension.
func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedQuery embeds a single string, coalescing identical in-flight
// requests.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	v, err, _ := p.group.Do(text, func() (any, error) {
		vectors, err := p.EmbedDocuments(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return vectors[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float64), nil
}

// EmbedDocuments embeds a batch of documents in a single request.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(embeddingRequest{Model: p.model, Input: documents})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "embedding request failed").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read embedding response").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		code := types.ErrUpstreamError
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			code = types.ErrAuthentication
		case http.StatusTooManyRequests:
			code = types.ErrRateLimit
		}
		return nil, types.NewError(code, msg).WithHTTPStatus(resp.StatusCode)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "decode embedding response").WithCause(err)
	}
	if len(parsed.Data) != len(documents) {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("expected %d embeddings, got %d", len(documents), len(parsed.Data)))
	}

	vectors := make([][]float64, len(documents))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, types.NewError(types.ErrUpstreamError, "embedding index out of range")
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
