package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disha18704/cerina-health-assignment/memory"
	"github.com/disha18704/cerina-health-assignment/testutil"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

func newMemoryAgent(t *testing.T, embedder memory.Embedder) (*MemoryAgent, *memory.Index) {
	t.Helper()
	store := memory.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	index := memory.NewIndex(store, embedder)
	return NewMemoryAgent(index, 0, nil), index
}

func TestMemoryAgentRetrievalHit(t *testing.T) {
	embedder := (&testutil.StubEmbedder{Dim: 4}).
		Map("anxiety", []float64{1, 0, 0, 0})
	agent, index := newMemoryAgent(t, embedder)
	ctx := context.Background()

	draft := types.ExerciseDraft{Title: "anxiety grounding", Content: "body", Instructions: "daily"}
	_, err := index.IndexDraft(ctx, "I feel anxious about public speaking and general anxiety", draft, nil)
	require.NoError(t, err)

	state := types.NewState()
	state.Messages = append(state.Messages,
		types.NewUserMessage("show me the anxiety exercise you made"))

	delta, err := agent.Run(ctx, state)
	require.NoError(t, err)
	require.NotNil(t, delta.MemoryResult)
	assert.True(t, delta.MemoryResult.Found)
	assert.Equal(t, string(IntentRetrieve), delta.MemoryResult.Intent)
	require.NotNil(t, delta.MemoryResult.Draft)
	assert.Equal(t, "anxiety grounding", delta.MemoryResult.Draft.Title)
	require.Len(t, delta.Messages, 1, "hit is announced to the user")

	workflow.Merge(state, delta)
	assert.Equal(t, workflow.End, RouteFromMemory(state), "a served retrieval ends the run")
}

func TestMemoryAgentRetrievalMiss(t *testing.T) {
	agent, _ := newMemoryAgent(t, &testutil.StubEmbedder{Dim: 4})

	state := types.NewState()
	state.Messages = append(state.Messages,
		types.NewUserMessage("show me the sleep exercise you made"))

	delta, err := agent.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, delta.MemoryResult)
	assert.False(t, delta.MemoryResult.Found)
	assert.Equal(t, string(IntentRetrieve), delta.MemoryResult.Intent)

	workflow.Merge(state, delta)
	assert.Equal(t, NodeIntent, RouteFromMemory(state), "a miss falls through to classification")
}

func TestMemoryAgentSkipsLookupForCreationIntent(t *testing.T) {
	embedder := &testutil.StubEmbedder{Err: assert.AnError}
	agent, _ := newMemoryAgent(t, embedder)

	state := types.NewState()
	state.Messages = append(state.Messages,
		types.NewUserMessage("I have social anxiety before presentations"))

	// The embedder would fail if the agent searched; creation intent
	// must not touch the index.
	delta, err := agent.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, delta.MemoryResult)
	assert.False(t, delta.MemoryResult.Found)
	assert.Equal(t, string(IntentCreate), delta.MemoryResult.Intent)
}

func TestMemoryAgentSurfacesSearchFailure(t *testing.T) {
	agent, _ := newMemoryAgent(t, &testutil.StubEmbedder{Err: assert.AnError})

	state := types.NewState()
	state.Messages = append(state.Messages,
		types.NewUserMessage("show me the exercise you made"))

	_, err := agent.Run(context.Background(), state)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRouteFromMemoryChatRequest(t *testing.T) {
	state := types.NewState()
	state.NextWorker = NodeChat
	state.MemoryResult = &types.MemoryResult{Intent: string(IntentChat)}
	assert.Equal(t, NodeChat, RouteFromMemory(state))
}

func TestRouteFromIntent(t *testing.T) {
	state := types.NewState()
	state.NextWorker = NodeChat
	assert.Equal(t, NodeChat, RouteFromIntent(state))

	state.NextWorker = NodeSupervisor
	assert.Equal(t, NodeSupervisor, RouteFromIntent(state))
}
