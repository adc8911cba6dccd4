package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/internal/metrics"
	"github.com/disha18704/cerina-health-assignment/types"
)

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusCompleted means the graph reached End.
	StatusCompleted Status = "completed"
	// StatusAwaitingHuman means the graph paused at AwaitHuman and the
	// thread is resumable once a human has signed off.
	StatusAwaitingHuman Status = "awaiting_human"
)

// EventType tags a streamed execution event.
type EventType string

const (
	// EventNode reports one node activation and its partial update.
	EventNode EventType = "node"
	// EventComplete is the explicit end-of-stream marker.
	EventComplete EventType = "complete"
	// EventError reports a run-level failure; the stream ends after it.
	EventError EventType = "error"
)

// Event is one streamed execution event. The checkpoint for a node event
// is durable before the event is emitted, so abandoning a stream never
// loses committed progress.
type Event struct {
	Type   EventType `json:"type"`
	Node   string    `json:"node,omitempty"`
	Delta  *Delta    `json:"delta,omitempty"`
	Status Status    `json:"status,omitempty"`
	Err    error     `json:"-"`
}

// DefaultMaxSteps bounds node activations per run as a runaway guard.
const DefaultMaxSteps = 50

// Runner executes a compiled graph against a checkpoint store.
type Runner struct {
	graph     *Graph
	ckpt      Checkpointer
	logger    *zap.Logger
	collector *metrics.Collector
	maxSteps  int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) RunnerOption {
	return func(r *Runner) { r.collector = c }
}

// WithMaxSteps overrides the per-run activation bound.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) { r.maxSteps = n }
}

// Compile validates the graph wiring and binds it to a checkpoint store.
func (g *Graph) Compile(ckpt Checkpointer, opts ...RunnerOption) (*Runner, error) {
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	if ckpt == nil {
		return nil, fmt.Errorf("checkpointer is required")
	}
	r := &Runner{
		graph:    g,
		ckpt:     ckpt,
		logger:   zap.NewNop(),
		maxSteps: DefaultMaxSteps,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// threadLock returns the mutex serializing runs for one thread id.
// Independent threads run concurrently; a thread is single-writer.
func (r *Runner) threadLock(threadID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[threadID] = l
	}
	return l
}

// GetState returns the last committed snapshot for a thread. Unknown
// threads yield a types.ErrThreadNotFound error, distinct from a thread
// that exists but has produced no draft yet.
func (r *Runner) GetState(ctx context.Context, threadID string) (*types.State, error) {
	state, err := r.ckpt.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// Invoke runs the graph for threadID with the incoming delta applied
// first, blocking until a terminal routing decision, and returns the
// final state and terminal status.
func (r *Runner) Invoke(ctx context.Context, threadID string, input *Delta) (*types.State, Status, error) {
	return r.run(ctx, threadID, input, nil)
}

// Stream runs the graph like Invoke but emits one event per node
// activation, then a completion event carrying the terminal status.
// Run-level failures surface as a distinct error event rather than a
// silently truncated stream. The channel is closed when the run ends.
func (r *Runner) Stream(ctx context.Context, threadID string, input *Delta) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		emit := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
				// Consumer abandoned the stream. State is already
				// committed, so dropping events is safe.
			}
		}
		_, status, err := r.run(ctx, threadID, input, emit)
		if err != nil {
			emit(Event{Type: EventError, Err: err})
			return
		}
		emit(Event{Type: EventComplete, Status: status})
	}()
	return events
}

func (r *Runner) run(ctx context.Context, threadID string, input *Delta, emit func(Event)) (*types.State, Status, error) {
	lock := r.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	logger := r.logger.With(zap.String("thread_id", threadID))

	state, err := r.ckpt.Load(ctx, threadID)
	if err != nil {
		if !types.IsErrorCode(err, types.ErrThreadNotFound) {
			return nil, "", fmt.Errorf("load checkpoint: %w", err)
		}
		state = types.NewState()
		logger.Debug("initialized empty state for new thread")
	}

	Merge(state, input)
	if err := r.save(ctx, threadID, state); err != nil {
		return nil, "", err
	}

	current := r.graph.entry
	for step := 0; ; step++ {
		if step >= r.maxSteps {
			return nil, "", types.NewError(types.ErrInternalError,
				fmt.Sprintf("run exceeded %d node activations", r.maxSteps))
		}
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		fn := r.graph.nodes[current]
		start := time.Now()
		delta, err := fn(ctx, state)
		r.collector.ObserveNode(current, time.Since(start), err)
		if err != nil {
			// Last committed checkpoint stays intact; the run is not
			// marked complete.
			logger.Error("node failed", zap.String("node", current), zap.Error(err))
			return nil, "", types.NewError(types.ErrNodeFailed,
				fmt.Sprintf("node %s failed", current)).WithCause(err)
		}

		Merge(state, delta)
		if err := r.save(ctx, threadID, state); err != nil {
			return nil, "", err
		}
		logger.Debug("node executed", zap.String("node", current), zap.Int("step", step))
		if emit != nil {
			emit(Event{Type: EventNode, Node: current, Delta: delta})
		}

		next, err := r.graph.next(current, state)
		if err != nil {
			return nil, "", types.NewError(types.ErrInternalError, "routing failed").WithCause(err)
		}
		switch next {
		case End:
			r.collector.RunFinished(string(StatusCompleted))
			return state.Clone(), StatusCompleted, nil
		case AwaitHuman:
			r.collector.RunFinished(string(StatusAwaitingHuman))
			return state.Clone(), StatusAwaitingHuman, nil
		}
		current = next
	}
}

func (r *Runner) save(ctx context.Context, threadID string, state *types.State) error {
	if err := r.ckpt.Save(ctx, threadID, state); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	r.collector.CheckpointSaved()
	return nil
}
