// Package foundry assembles the exercise foundry: the seven-node
// workflow graph, the checkpoint store, the embedding index, and the
// application facade the transports call into.
package foundry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/agents"
	"github.com/disha18704/cerina-health-assignment/config"
	"github.com/disha18704/cerina-health-assignment/internal/logging"
	"github.com/disha18704/cerina-health-assignment/internal/metrics"
	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/llm/embedding"
	"github.com/disha18704/cerina-health-assignment/memory"
	"github.com/disha18704/cerina-health-assignment/persistence"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

// Nodes bundles the seven graph workers.
type Nodes struct {
	Memory     *agents.MemoryAgent
	Intent     *agents.IntentAgent
	Chat       *agents.ChatAgent
	Supervisor *agents.Supervisor
	Drafter    *agents.DrafterAgent
	Safety     *agents.SafetyGuardian
	Clinical   *agents.ClinicalCritic
}

// BuildGraph wires the routing table. Entry is the memory node; a
// successful retrieval or a chat reply ends the run without touching
// the drafting cycle, everything else flows through the supervisor.
func BuildGraph(n Nodes) *workflow.Graph {
	return workflow.NewGraph().
		AddNode(agents.NodeMemory, n.Memory.Run).
		AddNode(agents.NodeIntent, n.Intent.Run).
		AddNode(agents.NodeChat, n.Chat.Run).
		AddNode(agents.NodeSupervisor, n.Supervisor.Run).
		AddNode(agents.NodeDrafter, n.Drafter.Run).
		AddNode(agents.NodeSafetyGuardian, n.Safety.Run).
		AddNode(agents.NodeClinicalCritic, n.Clinical.Run).
		AddConditionalEdges(agents.NodeMemory, agents.RouteFromMemory,
			workflow.End, agents.NodeChat, agents.NodeIntent).
		AddConditionalEdges(agents.NodeIntent, agents.RouteFromIntent,
			agents.NodeChat, agents.NodeSupervisor).
		AddConditionalEdges(agents.NodeSupervisor, agents.RouteFromSupervisor,
			agents.NodeDrafter, agents.NodeSafetyGuardian, agents.NodeClinicalCritic,
			workflow.AwaitHuman, workflow.End).
		AddEdge(agents.NodeDrafter, agents.NodeSupervisor).
		AddEdge(agents.NodeSafetyGuardian, agents.NodeSupervisor).
		AddEdge(agents.NodeClinicalCritic, agents.NodeSupervisor).
		AddEdge(agents.NodeChat, workflow.End).
		SetEntry(agents.NodeMemory)
}

// App is the application facade: one explicit handle owning every
// component, constructed once at startup.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    persistence.StateStore
	memStore memory.Store
	index    *memory.Index
	runner   *workflow.Runner
	registry *prometheus.Registry
}

// New builds the application from configuration. Configuration problems,
// including missing LLM credentials, fail here rather than at first use.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
		RPS:     cfg.LLM.RPS,
	})
	if err != nil {
		return nil, err
	}
	embedder, err := embedding.NewOpenAIProvider(embedding.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.EmbeddingModel,
		Timeout: cfg.LLM.Timeout,
		RPS:     cfg.LLM.RPS,
	})
	if err != nil {
		return nil, err
	}

	store, err := persistence.NewStateStore(persistence.StoreConfig{
		Type:       persistence.StoreType(cfg.Store.Type),
		SQLitePath: cfg.Store.Path,
		Redis: persistence.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	var memStore memory.Store
	if cfg.Memory.Path == "" {
		memStore = memory.NewInMemoryStore()
	} else {
		memStore, err = memory.NewGormStore(cfg.Memory.Path)
		if err != nil {
			return nil, err
		}
	}

	return assemble(cfg, logger, provider, embedder, store, memStore)
}

// assemble wires pre-built components into a running App. Split from New
// so tests can substitute stub providers and in-memory stores.
func assemble(
	cfg *config.Config,
	logger *zap.Logger,
	provider llm.Provider,
	embedder memory.Embedder,
	store persistence.StateStore,
	memStore memory.Store,
) (*App, error) {
	registry := prometheus.NewRegistry()
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, registry)
	}

	index := memory.NewIndex(memStore, embedder,
		memory.WithLogger(logger.Named("memory")),
		memory.WithMetrics(collector))

	nodes := Nodes{
		Memory: agents.NewMemoryAgent(index, cfg.Memory.Threshold, logger.Named(agents.NodeMemory)),
		Intent: agents.NewIntentAgent(provider, logger.Named(agents.NodeIntent)),
		Chat:   agents.NewChatAgent(provider, logger.Named(agents.NodeChat)),
		Supervisor: agents.NewSupervisor(agents.Policy{
			MaxIterations: cfg.Supervisor.MaxIterations,
			MaxRevisions:  cfg.Supervisor.MaxRevisions,
		}, logger.Named(agents.NodeSupervisor)),
		Drafter:  agents.NewDrafterAgent(provider, logger.Named(agents.NodeDrafter)),
		Safety:   agents.NewSafetyGuardian(provider, logger.Named(agents.NodeSafetyGuardian)),
		Clinical: agents.NewClinicalCritic(provider, logger.Named(agents.NodeClinicalCritic)),
	}

	runner, err := BuildGraph(nodes).Compile(store,
		workflow.WithLogger(logger.Named("workflow")),
		workflow.WithMetrics(collector),
		workflow.WithMaxSteps(cfg.Workflow.MaxSteps))
	if err != nil {
		return nil, fmt.Errorf("compile workflow graph: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		memStore: memStore,
		index:    index,
		runner:   runner,
		registry: registry,
	}, nil
}

// Registry exposes the metrics registry for a scrape endpoint.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Index exposes the embedding index, for tooling that seeds or inspects
// stored exercises.
func (a *App) Index() *memory.Index { return a.index }

// SendMessage runs the workflow to completion for one user message and
// returns the final state. Unknown thread ids start a fresh thread.
func (a *App) SendMessage(ctx context.Context, threadID, text string) (*types.State, workflow.Status, error) {
	return a.runner.Invoke(ctx, threadID, messageDelta(text))
}

// StreamMessage runs the workflow, emitting one event per node
// activation, a completion event with the terminal status, or an error
// event. Abandoning the channel never corrupts thread state.
func (a *App) StreamMessage(ctx context.Context, threadID, text string) <-chan workflow.Event {
	return a.runner.Stream(ctx, threadID, messageDelta(text))
}

// GetState returns the current snapshot for a thread. An unknown thread
// is a THREAD_NOT_FOUND error, distinct from an existing thread whose
// state has no draft yet.
func (a *App) GetState(ctx context.Context, threadID string) (*types.State, error) {
	return a.runner.GetState(ctx, threadID)
}

// Approve finalizes the thread's current draft, optionally applying a
// human content edit first. The approved draft is recorded in the
// version history and indexed into memory under the thread's original
// request, so later similar requests are served from the index.
func (a *App) Approve(ctx context.Context, threadID, editedContent string) (*types.State, error) {
	state, err := a.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if state.CurrentDraft == nil {
		return nil, types.NewError(types.ErrInvalidRequest,
			"thread has no draft to approve").WithHTTPStatus(400)
	}

	delta := &workflow.Delta{}
	draft := *state.CurrentDraft
	if editedContent != "" {
		draft.Content = editedContent
		delta.CurrentDraft = &draft
		delta.DraftHistory = []types.DraftVersion{
			types.NewDraftVersion(state.CurrentVersion()+1, draft, "human", "edited during approval"),
		}
	}
	delta.Scratchpad = []types.AgentNote{
		types.NewNote("human", types.PriorityInfo,
			fmt.Sprintf("approved draft: %s", draft.Title)),
	}
	workflow.Merge(state, delta)

	if err := a.store.Save(ctx, threadID, state); err != nil {
		return nil, err
	}

	originalQuery := types.FirstUserMessage(state.Messages)
	meta := state.Metadata
	if _, err := a.index.IndexDraft(ctx, originalQuery, draft, &meta); err != nil {
		a.logger.Warn("approved draft could not be indexed",
			zap.String("thread_id", threadID), zap.Error(err))
	}

	return state.Clone(), nil
}

// Close releases the stores and flushes the logger.
func (a *App) Close() error {
	err := a.store.Close()
	if merr := a.memStore.Close(); err == nil {
		err = merr
	}
	_ = a.logger.Sync()
	return err
}

func messageDelta(text string) *workflow.Delta {
	return &workflow.Delta{
		Messages: []types.Message{types.NewUserMessage(text)},
	}
}
