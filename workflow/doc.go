// Package workflow implements the directed-graph orchestration engine:
// named nodes over a shared conversation state, conditional routing,
// per-field state reducers, durable per-thread checkpoints, and
// resumable streaming execution.
//
// A Graph is a compile-time table mapping node name -> handler and node
// name -> routing rule. Compile validates the wiring (every routing
// target must be a registered node or a terminal marker) and returns a
// Runner bound to a checkpoint store. Within a thread, node activations
// and their checkpoints are strictly sequential; concurrent runs on the
// same thread id are serialized by a per-thread lock.
package workflow
