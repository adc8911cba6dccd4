// Package testutil provides deterministic stand-ins for the external
// generation and embedding capabilities, used across package tests.
package testutil

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/disha18704/cerina-health-assignment/llm"
)

// StubEmbedder is a deterministic embedding.Provider / memory.Embedder.
// Texts matching a mapped substring return the mapped vector; everything
// else gets a text-seeded pseudo-random unit vector, so unrelated texts
// land far apart in vector space.
type StubEmbedder struct {
	Dim int
	Err error

	rules []embedRule
}

type embedRule struct {
	substr string
	vector []float64
}

// Map registers a fixed vector for any text containing substr
// (case-insensitive). Rules are matched in registration order.
func (e *StubEmbedder) Map(substr string, vector []float64) *StubEmbedder {
	e.rules = append(e.rules, embedRule{substr: strings.ToLower(substr), vector: vector})
	return e
}

// EmbedQuery returns the vector for text.
func (e *StubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	lower := strings.ToLower(text)
	for _, r := range e.rules {
		if strings.Contains(lower, r.substr) {
			return append([]float64(nil), r.vector...), nil
		}
	}
	return e.hashVector(text), nil
}

// EmbedDocuments embeds each document independently.
func (e *StubEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	out := make([][]float64, len(documents))
	for i, d := range documents {
		v, err := e.EmbedQuery(ctx, d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Name returns the provider name.
func (e *StubEmbedder) Name() string { return "stub" }

// Dimensions returns the embedding dimension.
func (e *StubEmbedder) Dimensions() int { return e.dim() }

func (e *StubEmbedder) dim() int {
	if e.Dim > 0 {
		return e.Dim
	}
	return 8
}

func (e *StubEmbedder) hashVector(text string) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float64, e.dim())
	var norm float64
	for i := range v {
		// xorshift64 keeps the vector deterministic per text.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v[i] = float64(int64(seed%2000)-1000) / 1000.0
		norm += v[i] * v[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// StubProvider is a scripted llm.Provider. Fn, when set, computes the
// response from the request; otherwise responses pop in order.
type StubProvider struct {
	mu        sync.Mutex
	Responses []string
	Fn        func(req *llm.ChatRequest) (string, error)
	Err       error
	Calls     []*llm.ChatRequest
}

// Completion returns the next scripted response.
func (p *StubProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, req)
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Fn != nil {
		content, err := p.Fn(req)
		if err != nil {
			return nil, err
		}
		return &llm.ChatResponse{Content: content, Model: "stub"}, nil
	}
	if len(p.Responses) == 0 {
		return nil, fmt.Errorf("stub provider has no scripted response for call %d", len(p.Calls))
	}
	content := p.Responses[0]
	p.Responses = p.Responses[1:]
	return &llm.ChatResponse{Content: content, Model: "stub"}, nil
}

// Name returns the provider name.
func (p *StubProvider) Name() string { return "stub" }
