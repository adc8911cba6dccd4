// Package llm defines the chat-completion boundary the agent nodes call
// through, plus the OpenAI-compatible HTTP implementation. Providers are
// stateless and reentrant; one handle is constructed at startup and
// shared by every node.
package llm

import (
	"context"

	"github.com/disha18704/cerina-health-assignment/types"
)

// ChatRequest is a synchronous chat-completion request.
type ChatRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool `json:"-"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a completed chat response.
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider is the chat-completion interface nodes depend on.
type Provider interface {
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Name() string
}
