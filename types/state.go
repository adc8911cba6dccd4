package types

// State is the full conversation state for one thread. It is owned
// exclusively by the workflow runner for the lifetime of the thread and
// mutated only through node-output merges.
//
// Messages, DraftHistory, Critiques and Scratchpad are append-only;
// the remaining fields are overwritten whole by the last node to set them.
type State struct {
	Messages     []Message      `json:"messages"`
	CurrentDraft *ExerciseDraft `json:"current_draft,omitempty"`
	DraftHistory []DraftVersion `json:"draft_history"`
	Critiques    []Critique     `json:"critiques"`
	Scratchpad   []AgentNote    `json:"scratchpad"`
	Metadata     ReviewMetadata `json:"metadata"`
	NextWorker   string         `json:"next_worker,omitempty"`
	LastReviewer string         `json:"last_reviewer,omitempty"`
	MemoryResult *MemoryResult  `json:"memory_result,omitempty"`
}

// NewState returns the empty state a thread starts from: all collections
// empty, no draft, zeroed metadata.
func NewState() *State {
	return &State{
		Messages:     []Message{},
		DraftHistory: []DraftVersion{},
		Critiques:    []Critique{},
		Scratchpad:   []AgentNote{},
	}
}

// Clone returns a deep-enough copy of the state for handing to callers:
// slices are copied so later merges cannot mutate the returned value.
// Slice elements and the draft payload are value types and copy with them.
func (s *State) Clone() *State {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.DraftHistory = append([]DraftVersion(nil), s.DraftHistory...)
	c.Critiques = append([]Critique(nil), s.Critiques...)
	c.Scratchpad = append([]AgentNote(nil), s.Scratchpad...)
	if s.CurrentDraft != nil {
		d := *s.CurrentDraft
		c.CurrentDraft = &d
	}
	if s.MemoryResult != nil {
		m := *s.MemoryResult
		c.MemoryResult = &m
	}
	return &c
}

// CurrentVersion returns the version number of the most recent draft
// snapshot, or 0 when no draft has been produced yet.
func (s *State) CurrentVersion() int {
	if len(s.DraftHistory) == 0 {
		return 0
	}
	return s.DraftHistory[len(s.DraftHistory)-1].Version
}

// LatestCritique returns the most recent critique by author for the given
// draft version, or nil when the reviewer has not reviewed that version.
func (s *State) LatestCritique(author string, version int) *Critique {
	for i := len(s.Critiques) - 1; i >= 0; i-- {
		c := s.Critiques[i]
		if c.Author == author && c.DraftVersion == version {
			return &c
		}
	}
	return nil
}
