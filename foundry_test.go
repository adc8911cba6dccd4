package foundry

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/agents"
	"github.com/disha18704/cerina-health-assignment/config"
	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/memory"
	"github.com/disha18704/cerina-health-assignment/persistence"
	"github.com/disha18704/cerina-health-assignment/testutil"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

const testDraftJSON = `{"title": "Presentation Grounding", "content": "Before presenting, walk through 5-4-3-2-1 grounding.", "instructions": "Practice daily for one week."}`

// scriptProvider answers each node by recognizing its system prompt.
func scriptProvider(overrides map[string]string) *testutil.StubProvider {
	return &testutil.StubProvider{
		Fn: func(req *llm.ChatRequest) (string, error) {
			system := req.Messages[0].Content
			for marker, response := range overrides {
				if strings.Contains(system, marker) {
					return response, nil
				}
			}
			switch {
			case strings.Contains(system, "classify"):
				return `{"intent": "create"}`, nil
			case strings.Contains(system, "exercise designer"):
				return testDraftJSON, nil
			case strings.Contains(system, "safety reviewer"):
				return `{"approved": true, "critique": "safe", "safety_score": 0.9}`, nil
			case strings.Contains(system, "clinical reviewer"):
				return `{"approved": true, "critique": "sound", "empathy_score": 0.8, "clarity_score": 0.85}`, nil
			default:
				return "Happy to chat!", nil
			}
		},
	}
}

func newTestApp(t *testing.T, provider llm.Provider, cfgEdit func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-test"
	cfg.Store.Type = "memory"
	cfg.Memory.Path = ""
	if cfgEdit != nil {
		cfgEdit(cfg)
	}

	embedder := (&testutil.StubEmbedder{Dim: 4}).
		Map("public speaking", []float64{1, 0, 0, 0}).
		Map("presentation", []float64{1, 0.05, 0, 0})

	app, err := assemble(cfg, zap.NewNop(), provider, embedder,
		persistence.NewMemoryStateStore(), memory.NewInMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestSendMessageDraftFlow(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)
	ctx := context.Background()

	state, status, err := app.SendMessage(ctx, "t1", "I have social anxiety before presentations")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, status)

	require.NotNil(t, state.CurrentDraft)
	assert.Equal(t, "Presentation Grounding", state.CurrentDraft.Title)
	require.Len(t, state.DraftHistory, 1)
	assert.Equal(t, 1, state.DraftHistory[0].Version)
	assert.Equal(t, *state.CurrentDraft, state.DraftHistory[0].Draft)
	assert.Equal(t, 1, state.Metadata.TotalRevisions)

	require.Len(t, state.Critiques, 2)
	for _, c := range state.Critiques {
		assert.True(t, c.Approved)
		assert.Equal(t, 1, c.DraftVersion)
	}
	assert.ElementsMatch(t,
		[]string{agents.NodeSafetyGuardian, agents.NodeClinicalCritic},
		[]string{state.Critiques[0].Author, state.Critiques[1].Author})

	require.NotNil(t, state.Metadata.SafetyScore)
	assert.InDelta(t, 0.9, *state.Metadata.SafetyScore, 1e-9)

	// The final state is durable and readable by thread id alone.
	loaded, err := app.GetState(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, state.DraftHistory, loaded.DraftHistory)
}

func TestStreamMessageEventOrder(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)

	var nodeOrder []string
	var terminal workflow.Event
	for ev := range app.StreamMessage(context.Background(), "t1", "I have social anxiety before presentations") {
		switch ev.Type {
		case workflow.EventNode:
			nodeOrder = append(nodeOrder, ev.Node)
		default:
			terminal = ev
		}
	}

	assert.Equal(t, []string{
		agents.NodeMemory,
		agents.NodeIntent,
		agents.NodeSupervisor,
		agents.NodeDrafter,
		agents.NodeSupervisor,
		agents.NodeSafetyGuardian,
		agents.NodeSupervisor,
		agents.NodeClinicalCritic,
		agents.NodeSupervisor,
	}, nodeOrder)
	assert.Equal(t, workflow.EventComplete, terminal.Type)
	assert.Equal(t, workflow.StatusCompleted, terminal.Status)
}

func TestChatFlowProducesNoDraft(t *testing.T) {
	provider := scriptProvider(map[string]string{"classify": `{"intent": "chat"}`})
	app := newTestApp(t, provider, nil)

	state, status, err := app.SendMessage(context.Background(), "t1", "hello!")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, status)
	assert.Nil(t, state.CurrentDraft)
	assert.Empty(t, state.DraftHistory)

	last := state.Messages[len(state.Messages)-1]
	assert.Equal(t, types.RoleAssistant, last.Role)
	assert.Equal(t, agents.NodeChat, last.Name)
	assert.Equal(t, "Happy to chat!", last.Content)
}

func TestPersistentRejectionEscalatesToHuman(t *testing.T) {
	provider := scriptProvider(map[string]string{
		"safety reviewer": `{"approved": false, "critique": "too risky", "safety_score": 0.2}`,
	})
	app := newTestApp(t, provider, func(cfg *config.Config) {
		cfg.Supervisor.MaxRevisions = 2
	})

	state, status, err := app.SendMessage(context.Background(), "t1", "I have social anxiety before presentations")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusAwaitingHuman, status)
	assert.Equal(t, 2, state.Metadata.TotalRevisions, "revised up to the ceiling")
	assert.NotNil(t, state.CurrentDraft, "last draft stays available for human review")
}

func TestApproveIndexesDraftForRetrieval(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)
	ctx := context.Background()

	_, status, err := app.SendMessage(ctx, "t1", "I feel anxious about public speaking")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusCompleted, status)

	approved, err := app.Approve(ctx, "t1", "")
	require.NoError(t, err)
	require.NotNil(t, approved.CurrentDraft)

	// The approved exercise is retrievable by semantic similarity.
	results, err := app.Index().Search(ctx, "public speaking anxiety help", 0, memory.DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Presentation Grounding", results[0].Title)
	assert.Equal(t, "I feel anxious about public speaking", results[0].OriginalQuery)

	// A later retrieval request on a fresh thread is served from memory
	// without running the drafting cycle.
	state, status, err := app.SendMessage(ctx, "t2", "show me the public speaking exercise you made")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, status)
	require.NotNil(t, state.MemoryResult)
	assert.True(t, state.MemoryResult.Found)
	assert.Empty(t, state.DraftHistory, "retrieval skips generation")
}

func TestApproveWithEditAppendsHumanVersion(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)
	ctx := context.Background()

	_, _, err := app.SendMessage(ctx, "t1", "I feel anxious about public speaking")
	require.NoError(t, err)

	state, err := app.Approve(ctx, "t1", "Edited content with a softer tone.")
	require.NoError(t, err)

	require.NotNil(t, state.CurrentDraft)
	assert.Equal(t, "Edited content with a softer tone.", state.CurrentDraft.Content)
	require.Len(t, state.DraftHistory, 2)
	last := state.DraftHistory[1]
	assert.Equal(t, 2, last.Version)
	assert.Equal(t, "human", last.CreatedBy)
	assert.Equal(t, *state.CurrentDraft, last.Draft)

	// The indexed payload carries the human edit.
	results, err := app.Index().Search(ctx, "public speaking anxiety", 0, memory.DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Edited content with a softer tone.", results[0].Draft.Content)
}

func TestApproveErrors(t *testing.T) {
	provider := scriptProvider(map[string]string{"classify": `{"intent": "chat"}`})
	app := newTestApp(t, provider, nil)
	ctx := context.Background()

	_, err := app.Approve(ctx, "missing", "")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrThreadNotFound))

	_, _, err = app.SendMessage(ctx, "t1", "hello!")
	require.NoError(t, err)

	_, err = app.Approve(ctx, "t1", "edited")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidRequest),
		"editing without a draft is rejected")
}

func TestGetStateUnknownThread(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)

	_, err := app.GetState(context.Background(), "never-seen")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrThreadNotFound))
}

func TestConcurrentThreadsStayIsolated(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)
	ctx := context.Background()

	const threads = 8
	errs := make(chan error, threads)
	for i := 0; i < threads; i++ {
		go func(id int) {
			_, _, err := app.SendMessage(ctx,
				fmt.Sprintf("t%d", id),
				fmt.Sprintf("I have social anxiety before presentations (case %d)", id))
			errs <- err
		}(i)
	}
	for i := 0; i < threads; i++ {
		require.NoError(t, <-errs)
	}

	for i := 0; i < threads; i++ {
		state, err := app.GetState(ctx, fmt.Sprintf("t%d", i))
		require.NoError(t, err)
		assert.Len(t, state.DraftHistory, 1)
		assert.Contains(t, types.FirstUserMessage(state.Messages), fmt.Sprintf("case %d", i))
	}
}

func TestBuildGraphValidates(t *testing.T) {
	app := newTestApp(t, scriptProvider(nil), nil)
	require.NotNil(t, app.runner, "assembled graph compiles")
}
