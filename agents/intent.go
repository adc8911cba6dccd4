package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	// IntentCreate asks for a new or revised exercise.
	IntentCreate Intent = "create"
	// IntentRetrieve asks for a previously generated exercise.
	IntentRetrieve Intent = "retrieve"
	// IntentChat is conversation that needs no exercise work.
	IntentChat Intent = "chat"
)

var retrievalPhrases = []string{
	"show me", "find the", "find my", "retrieve", "previous exercise",
	"earlier exercise", "last time", "you gave me", "you made", "you created",
	"that exercise again", "the one from before", "saved exercise",
}

var chatPhrases = []string{
	"hello", "hi there", "hey", "good morning", "good evening",
	"thank you", "thanks", "how are you", "what is cbt", "what does cbt",
	"who are you", "what can you do",
}

// classifyByRules is the deterministic fallback classifier. Retrieval
// phrasing wins over chat phrasing; anything unrecognized is a creation
// request, which keeps the pipeline biased toward doing useful work.
func classifyByRules(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range retrievalPhrases {
		if strings.Contains(lower, p) {
			return IntentRetrieve
		}
	}
	for _, p := range chatPhrases {
		if strings.HasPrefix(lower, p) {
			return IntentChat
		}
	}
	return IntentCreate
}

const intentSystemPrompt = `You classify one user message for a CBT exercise assistant.
Reply with a JSON object: {"intent": "<value>"} where <value> is exactly one of:
- "chat": greetings, thanks, or general questions that need no exercise
- "create": a request to design, change, or improve a CBT exercise
Reply with the JSON object only.`

// IntentAgent classifies whether the user wants conversation or exercise
// work. The model call is advisory; unparseable or out-of-vocabulary
// output degrades to the rule classifier so routing stays deterministic.
type IntentAgent struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewIntentAgent creates the intent classification node.
func NewIntentAgent(provider llm.Provider, logger *zap.Logger) *IntentAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentAgent{provider: provider, logger: logger}
}

// Run classifies the latest user message and records the chosen path in
// next_worker ("chat" or "supervisor").
func (a *IntentAgent) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	text := types.LastUserMessage(state.Messages)
	intent := a.classify(ctx, text)

	next := NodeSupervisor
	if intent == IntentChat {
		next = NodeChat
	}
	return &workflow.Delta{
		NextWorker: workflow.StringPtr(next),
		Scratchpad: []types.AgentNote{
			types.NewNote(NodeIntent, types.PriorityInfo,
				fmt.Sprintf("classified message as %q, routing to %s", intent, next)),
		},
	}, nil
}

func (a *IntentAgent) classify(ctx context.Context, text string) Intent {
	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{
		Messages: []types.Message{
			types.NewSystemMessage(intentSystemPrompt),
			types.NewUserMessage(text),
		},
		JSONMode: true,
	})
	if err != nil {
		a.logger.Warn("intent classification call failed, using rule classifier", zap.Error(err))
		return classifyByRules(text)
	}

	var out struct {
		Intent string `json:"intent"`
	}
	if err := parseJSON(resp.Content, &out); err != nil {
		a.logger.Warn("intent output unparseable, using rule classifier", zap.Error(err))
		return classifyByRules(text)
	}
	switch Intent(strings.ToLower(out.Intent)) {
	case IntentChat:
		return IntentChat
	case IntentCreate:
		return IntentCreate
	default:
		a.logger.Warn("intent output out of vocabulary, using rule classifier",
			zap.String("intent", out.Intent))
		return classifyByRules(text)
	}
}
