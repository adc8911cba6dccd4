package workflow

import (
	"context"
	"fmt"

	"github.com/disha18704/cerina-health-assignment/types"
)

// Terminal markers a routing rule may return instead of a node name.
const (
	// End terminates the run as completed.
	End = "__end__"
	// AwaitHuman terminates the run paused for human review. Distinct
	// from End so resumption logic can tell the two apart.
	AwaitHuman = "__await_human__"
)

// IsTerminal reports whether name is a terminal marker.
func IsTerminal(name string) bool {
	return name == End || name == AwaitHuman
}

// NodeFunc is a unit of work in the graph: it receives the full current
// state and returns a partial update containing only the fields it
// changes. Nodes must not mutate the state they receive.
type NodeFunc func(ctx context.Context, state *types.State) (*Delta, error)

// RouteFunc is a pure function of state to a destination node name or
// terminal marker, evaluated after its source node has executed and its
// delta has been merged and checkpointed.
type RouteFunc func(state *types.State) string

type conditionalEdge struct {
	route   RouteFunc
	targets []string
}

// Graph is the compile-time wiring of a node set: handlers, static
// edges, conditional edges, and the entry node.
type Graph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
	}
}

// AddNode registers a named node handler.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddEdge adds a static edge: after from executes, control always moves
// to to (a node name or terminal marker).
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdges attaches a routing rule to from. targets declares
// every destination the rule may return; Compile rejects undeclared or
// unregistered destinations.
func (g *Graph) AddConditionalEdges(from string, route RouteFunc, targets ...string) *Graph {
	g.conditional[from] = conditionalEdge{route: route, targets: targets}
	return g
}

// SetEntry sets the entry node.
func (g *Graph) SetEntry(name string) *Graph {
	g.entry = name
	return g
}

// validate checks the wiring: the entry exists, every node has exactly
// one outgoing rule, and every declared destination is a registered node
// or a terminal marker.
func (g *Graph) validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph has no entry node")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("entry node %q is not registered", g.entry)
	}

	for name := range g.nodes {
		_, hasStatic := g.edges[name]
		_, hasCond := g.conditional[name]
		if hasStatic && hasCond {
			return fmt.Errorf("node %q has both a static and a conditional edge", name)
		}
		if !hasStatic && !hasCond {
			return fmt.Errorf("node %q has no outgoing edge", name)
		}
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("edge source %q is not registered", from)
		}
		if err := g.checkTarget(from, to); err != nil {
			return err
		}
	}
	for from, ce := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("conditional edge source %q is not registered", from)
		}
		if len(ce.targets) == 0 {
			return fmt.Errorf("conditional edge from %q declares no targets", from)
		}
		for _, to := range ce.targets {
			if err := g.checkTarget(from, to); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) checkTarget(from, to string) error {
	if IsTerminal(to) {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("edge %s -> %s targets an unregistered node", from, to)
	}
	return nil
}

// next evaluates the routing rule for the node that just executed.
func (g *Graph) next(from string, state *types.State) (string, error) {
	if to, ok := g.edges[from]; ok {
		return to, nil
	}
	ce, ok := g.conditional[from]
	if !ok {
		return "", fmt.Errorf("node %q has no outgoing edge", from)
	}
	to := ce.route(state)
	for _, t := range ce.targets {
		if t == to {
			return to, nil
		}
	}
	return "", fmt.Errorf("routing rule of %q returned undeclared target %q", from, to)
}

// Checkpointer persists thread state snapshots. Load must return an
// error with code types.ErrThreadNotFound for unknown threads; Save must
// be atomic per call and durable before it returns.
type Checkpointer interface {
	Load(ctx context.Context, threadID string) (*types.State, error)
	Save(ctx context.Context, threadID string, state *types.State) error
}

// ErrThreadNotFound is the sentinel returned by checkpoint stores for a
// thread that has never been saved.
func ErrThreadNotFound(threadID string) error {
	return types.NewError(types.ErrThreadNotFound, fmt.Sprintf("thread %s not found", threadID)).WithHTTPStatus(404)
}
