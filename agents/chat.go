package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

const chatSystemPrompt = `You are a warm, concise assistant for a CBT exercise service.
Answer conversationally. Do not produce a full exercise here; if the user
seems to want one, invite them to describe their challenge.`

// ChatAgent answers conversational turns that need no exercise work.
type ChatAgent struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewChatAgent creates the conversational node.
func NewChatAgent(provider llm.Provider, logger *zap.Logger) *ChatAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatAgent{provider: provider, logger: logger}
}

// Run produces a single assistant reply from the conversation history
// and clears next_worker so the chat request is not replayed on the next
// run's memory routing.
func (a *ChatAgent) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	msgs := make([]types.Message, 0, len(state.Messages)+1)
	msgs = append(msgs, types.NewSystemMessage(chatSystemPrompt))
	msgs = append(msgs, state.Messages...)

	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &workflow.Delta{
		Messages:   []types.Message{types.NewAssistantMessage(NodeChat, resp.Content)},
		NextWorker: workflow.StringPtr(""),
	}, nil
}
