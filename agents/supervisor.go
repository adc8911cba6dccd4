package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

// Policy is the supervisor's routing configuration. The zero value is
// not usable; call DefaultPolicy and override fields as needed.
type Policy struct {
	// MaxIterations caps supervisor activations per run before the
	// workflow escalates to human review.
	MaxIterations int
	// MaxRevisions caps drafter rewrites before escalation.
	MaxRevisions int
	// FinalPass, when set, is consulted after both reviewers approve
	// the current version. Returning true demands one more review pass
	// instead of completing. Nil completes immediately.
	FinalPass func(state *types.State) bool
}

// DefaultPolicy returns the stock supervisor limits.
func DefaultPolicy() Policy {
	return Policy{
		MaxIterations: 8,
		MaxRevisions:  3,
	}
}

// Supervisor sequences the drafting/review cycle. It is the only node
// with branching authority over drafter and the two reviewers, and its
// decisions are a pure function of state and policy.
type Supervisor struct {
	policy Policy
	logger *zap.Logger
}

// NewSupervisor creates the supervisor node with the given policy.
func NewSupervisor(policy Policy, logger *zap.Logger) *Supervisor {
	if policy.MaxIterations <= 0 {
		policy.MaxIterations = DefaultPolicy().MaxIterations
	}
	if policy.MaxRevisions <= 0 {
		policy.MaxRevisions = DefaultPolicy().MaxRevisions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{policy: policy, logger: logger}
}

// Run decides the next worker and records the reasoning on the
// scratchpad. Each activation bumps metadata.iteration_count.
func (s *Supervisor) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	worker, reasoning := s.Decide(state)

	meta := state.Metadata
	meta.IterationCount++

	s.logger.Info("supervisor decision",
		zap.String("next_worker", worker),
		zap.String("reasoning", reasoning),
		zap.Int("iteration", meta.IterationCount))

	return &workflow.Delta{
		NextWorker: workflow.StringPtr(worker),
		Metadata:   &meta,
		Scratchpad: []types.AgentNote{
			types.NewNote(NodeSupervisor, types.PriorityInfo, reasoning),
		},
	}, nil
}

// Decide implements the routing policy:
//
//  1. no draft yet: drafter
//  2. a reviewer rejected the current version: drafter, unless the
//     revision ceiling is hit, then human review
//  3. reviews outstanding for the current version: dispatch a pending
//     reviewer, alternating away from last_reviewer; ceiling hit
//     escalates to human review instead
//  4. both reviewers approved the current version: end, unless the
//     FinalPass hook demands one more review pass
func (s *Supervisor) Decide(state *types.State) (worker, reasoning string) {
	if state.CurrentDraft == nil {
		return NodeDrafter, "no draft exists yet, dispatching drafter"
	}

	version := state.CurrentVersion()
	safety := state.LatestCritique(NodeSafetyGuardian, version)
	clinical := state.LatestCritique(NodeClinicalCritic, version)

	if rejectedBy := rejectingReviewer(safety, clinical); rejectedBy != "" {
		if state.Metadata.TotalRevisions >= s.policy.MaxRevisions {
			return WorkerHumanReview, fmt.Sprintf(
				"%s rejected draft v%d but the revision ceiling (%d) is reached, escalating to human review",
				rejectedBy, version, s.policy.MaxRevisions)
		}
		return NodeDrafter, fmt.Sprintf(
			"%s rejected draft v%d, dispatching drafter for a revision", rejectedBy, version)
	}

	if pending := s.pickReviewer(state, safety, clinical); pending != "" {
		if state.Metadata.IterationCount >= s.policy.MaxIterations {
			return WorkerHumanReview, fmt.Sprintf(
				"draft v%d still needs review by %s but the iteration ceiling (%d) is reached, escalating to human review",
				version, pending, s.policy.MaxIterations)
		}
		return pending, fmt.Sprintf("dispatching %s to review draft v%d", pending, version)
	}

	if s.policy.FinalPass != nil && s.policy.FinalPass(state) {
		next := NodeSafetyGuardian
		if state.LastReviewer == NodeSafetyGuardian {
			next = NodeClinicalCritic
		}
		return next, fmt.Sprintf(
			"draft v%d is fully approved but the final-pass hook requested one more look from %s", version, next)
	}

	return WorkerEnd, fmt.Sprintf("draft v%d approved by both reviewers, finishing", version)
}

// pickReviewer returns the next pending reviewer for the current
// version, or "" when none remain. With both pending it alternates away
// from last_reviewer, defaulting to the safety guardian.
func (s *Supervisor) pickReviewer(state *types.State, safety, clinical *types.Critique) string {
	safetyPending := safety == nil
	clinicalPending := clinical == nil

	switch {
	case safetyPending && clinicalPending:
		if state.LastReviewer == NodeSafetyGuardian {
			return NodeClinicalCritic
		}
		return NodeSafetyGuardian
	case safetyPending:
		return NodeSafetyGuardian
	case clinicalPending:
		return NodeClinicalCritic
	default:
		return ""
	}
}

func rejectingReviewer(safety, clinical *types.Critique) string {
	if safety != nil && !safety.Approved {
		return NodeSafetyGuardian
	}
	if clinical != nil && !clinical.Approved {
		return NodeClinicalCritic
	}
	return ""
}

// RouteFromSupervisor turns the supervisor's next_worker decision into a
// graph destination. Human review pauses the thread; end completes it.
func RouteFromSupervisor(state *types.State) string {
	switch state.NextWorker {
	case NodeDrafter, NodeSafetyGuardian, NodeClinicalCritic:
		return state.NextWorker
	case WorkerHumanReview:
		return workflow.AwaitHuman
	default:
		return workflow.End
	}
}
