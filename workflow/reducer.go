package workflow

import (
	"github.com/disha18704/cerina-health-assignment/types"
)

// Reducer defines how to merge a node's update into the current value of
// a state field.
type Reducer[T any] func(current T, update T) T

// LastValueReducer returns the most recent value (overwrite semantics).
func LastValueReducer[T any]() Reducer[T] {
	return func(_, update T) T {
		return update
	}
}

// AppendReducer concatenates slices, preserving order. The result is a
// fresh slice so prior snapshots are never aliased.
func AppendReducer[T any]() Reducer[[]T] {
	return func(current, update []T) []T {
		if len(update) == 0 {
			return current
		}
		result := make([]T, 0, len(current)+len(update))
		result = append(result, current...)
		result = append(result, update...)
		return result
	}
}

// Delta is a partial state update returned by a node. Nil pointer fields
// and empty slices mean "untouched"; the merge step leaves those state
// fields as they are.
type Delta struct {
	Messages     []types.Message       `json:"messages,omitempty"`
	CurrentDraft *types.ExerciseDraft  `json:"current_draft,omitempty"`
	DraftHistory []types.DraftVersion  `json:"draft_history,omitempty"`
	Critiques    []types.Critique      `json:"critiques,omitempty"`
	Scratchpad   []types.AgentNote     `json:"scratchpad,omitempty"`
	Metadata     *types.ReviewMetadata `json:"metadata,omitempty"`
	NextWorker   *string               `json:"next_worker,omitempty"`
	LastReviewer *string               `json:"last_reviewer,omitempty"`
	MemoryResult *types.MemoryResult   `json:"memory_result,omitempty"`
}

// StringPtr is a convenience for Delta's overwrite fields.
func StringPtr(s string) *string { return &s }

// Merge applies a node delta to the state using the per-field reducer
// table: the four collections append, everything else overwrites. This
// is the single place merge rules live; nodes never mutate state
// directly.
func Merge(state *types.State, delta *Delta) {
	if delta == nil {
		return
	}

	appendMessages := AppendReducer[types.Message]()
	appendVersions := AppendReducer[types.DraftVersion]()
	appendCritiques := AppendReducer[types.Critique]()
	appendNotes := AppendReducer[types.AgentNote]()

	state.Messages = appendMessages(state.Messages, delta.Messages)
	state.DraftHistory = appendVersions(state.DraftHistory, delta.DraftHistory)
	state.Critiques = appendCritiques(state.Critiques, delta.Critiques)
	state.Scratchpad = appendNotes(state.Scratchpad, delta.Scratchpad)

	if delta.CurrentDraft != nil {
		d := *delta.CurrentDraft
		state.CurrentDraft = &d
	}
	if delta.Metadata != nil {
		state.Metadata = *delta.Metadata
	}
	if delta.NextWorker != nil {
		state.NextWorker = *delta.NextWorker
	}
	if delta.LastReviewer != nil {
		state.LastReviewer = *delta.LastReviewer
	}
	if delta.MemoryResult != nil {
		m := *delta.MemoryResult
		state.MemoryResult = &m
	}
}
