package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/memory"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

// MemoryAgent is the graph entry node. It checks whether the user is
// asking for a previously generated exercise and, if so, answers from
// the embedding index instead of invoking the generation cycle.
type MemoryAgent struct {
	index     *memory.Index
	threshold float64
	logger    *zap.Logger
}

// NewMemoryAgent creates the memory-lookup node. threshold <= 0 uses the
// index default.
func NewMemoryAgent(index *memory.Index, threshold float64, logger *zap.Logger) *MemoryAgent {
	if threshold <= 0 {
		threshold = memory.DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryAgent{index: index, threshold: threshold, logger: logger}
}

// Run classifies the latest user message with the rule classifier and,
// on retrieval intent, searches the index. The structured outcome lands
// in memory_result either way so the router can decide.
func (a *MemoryAgent) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	text := types.LastUserMessage(state.Messages)
	intent := classifyByRules(text)

	if intent != IntentRetrieve {
		return &workflow.Delta{
			MemoryResult: &types.MemoryResult{Intent: string(intent), Found: false},
		}, nil
	}

	results, err := a.index.Search(ctx, text, 1, a.threshold)
	if err != nil {
		return nil, fmt.Errorf("memory lookup: %w", err)
	}
	if len(results) == 0 {
		a.logger.Info("retrieval request missed the index", zap.String("query", text))
		return &workflow.Delta{
			MemoryResult: &types.MemoryResult{Intent: string(IntentRetrieve), Found: false},
			Scratchpad: []types.AgentNote{
				types.NewNote(NodeMemory, types.PriorityInfo,
					"no indexed exercise matched the request, falling through to generation"),
			},
		}, nil
	}

	best := results[0]
	a.logger.Info("serving exercise from memory",
		zap.String("key", best.Key), zap.Float64("similarity", best.Similarity))
	draft := best.Draft
	return &workflow.Delta{
		MemoryResult: &types.MemoryResult{
			Intent:     string(IntentRetrieve),
			Found:      true,
			Key:        best.Key,
			Draft:      &draft,
			Similarity: best.Similarity,
		},
		Messages: []types.Message{
			types.NewAssistantMessage(NodeMemory, fmt.Sprintf(
				"I found an exercise I made earlier for a similar request (%q): %s",
				best.OriginalQuery, draft.Title)),
		},
	}, nil
}

// RouteFromMemory decides where execution goes after the memory node: a
// successful retrieval ends the run, a pending chat request goes to the
// chat node, everything else goes through intent classification.
func RouteFromMemory(state *types.State) string {
	if r := state.MemoryResult; r != nil && r.Intent == string(IntentRetrieve) && r.Found {
		return workflow.End
	}
	if state.NextWorker == NodeChat {
		return NodeChat
	}
	return NodeIntent
}

// RouteFromIntent dispatches on the path the intent node recorded.
func RouteFromIntent(state *types.State) string {
	if state.NextWorker == NodeChat {
		return NodeChat
	}
	return NodeSupervisor
}
