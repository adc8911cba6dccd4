// Package agents implements the worker nodes of the exercise foundry:
// memory lookup, intent classification, conversational replies, the
// supervisor that sequences the drafting/review cycle, the drafter, and
// the two reviewers. Each agent exposes a Run method matching
// workflow.NodeFunc; agents read the full state and emit partial deltas,
// never mutating state directly.
package agents

// Node names as registered in the workflow graph. The supervisor's
// dispatch decisions use the same strings, plus the two pseudo-workers
// that terminate the cycle.
const (
	NodeMemory         = "memory"
	NodeIntent         = "intent"
	NodeChat           = "chat"
	NodeSupervisor     = "supervisor"
	NodeDrafter        = "drafter"
	NodeSafetyGuardian = "safety_guardian"
	NodeClinicalCritic = "clinical_critic"

	// WorkerHumanReview pauses the workflow for human approval.
	WorkerHumanReview = "human_review"
	// WorkerEnd finishes the workflow.
	WorkerEnd = "end"
)
