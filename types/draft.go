package types

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseDraft is a single generated CBT exercise artifact.
type ExerciseDraft struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
}

// DraftVersion is an immutable historical snapshot of a draft plus
// authorship metadata. Versions are monotonically increasing per thread.
type DraftVersion struct {
	Version   int           `json:"version"`
	Draft     ExerciseDraft `json:"draft"`
	CreatedBy string        `json:"created_by"`
	Notes     string        `json:"notes"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewDraftVersion snapshots a draft into the version history.
func NewDraftVersion(version int, draft ExerciseDraft, createdBy, notes string) DraftVersion {
	return DraftVersion{
		Version:   version,
		Draft:     draft,
		CreatedBy: createdBy,
		Notes:     notes,
		Timestamp: time.Now(),
	}
}

// Critique is a structured review verdict attached to a draft version.
// DraftVersion ties the verdict to the version it reviewed, so an approval
// for a superseded draft never counts toward the current one.
type Critique struct {
	Author       string `json:"author"`
	Content      string `json:"content"`
	Approved     bool   `json:"approved"`
	DraftVersion int    `json:"draft_version"`
}

// NotePriority is the priority level of a scratchpad note.
type NotePriority string

const (
	PriorityInfo     NotePriority = "info"
	PriorityWarning  NotePriority = "warning"
	PriorityCritical NotePriority = "critical"
)

// AgentNote is a free-form inter-agent scratchpad message. Target names
// the intended recipient when the note is directed at a specific agent.
type AgentNote struct {
	ID        string       `json:"id"`
	Author    string       `json:"author"`
	Target    string       `json:"target,omitempty"`
	Priority  NotePriority `json:"priority"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewNote creates a scratchpad note from author with the given priority.
func NewNote(author string, priority NotePriority, content string) AgentNote {
	return AgentNote{
		ID:        uuid.NewString(),
		Author:    author,
		Priority:  priority,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ReviewMetadata holds quality scores and run counters for a thread.
// Scores are optional and bounded to [0,1] when present.
type ReviewMetadata struct {
	SafetyScore    *float64 `json:"safety_score,omitempty"`
	EmpathyScore   *float64 `json:"empathy_score,omitempty"`
	ClarityScore   *float64 `json:"clarity_score,omitempty"`
	IterationCount int      `json:"iteration_count"`
	TotalRevisions int      `json:"total_revisions"`
}

// MemoryResult is the structured outcome of a memory-lookup attempt.
type MemoryResult struct {
	Intent     string         `json:"intent"`
	Found      bool           `json:"found"`
	Key        string         `json:"key,omitempty"`
	Draft      *ExerciseDraft `json:"draft,omitempty"`
	Similarity float64        `json:"similarity,omitempty"`
}
