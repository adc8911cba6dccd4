package types

import "testing"

func TestNewStateEmptyCollections(t *testing.T) {
	s := NewState()
	if s.CurrentDraft != nil {
		t.Error("new state must have no draft")
	}
	if len(s.Messages) != 0 || len(s.DraftHistory) != 0 || len(s.Critiques) != 0 || len(s.Scratchpad) != 0 {
		t.Error("new state collections must be empty")
	}
	if s.Metadata.IterationCount != 0 || s.Metadata.TotalRevisions != 0 {
		t.Error("new state counters must be zero")
	}
}

func TestCloneIsolation(t *testing.T) {
	s := NewState()
	s.Messages = append(s.Messages, NewUserMessage("hello"))
	s.CurrentDraft = &ExerciseDraft{Title: "Grounding"}

	c := s.Clone()
	c.Messages = append(c.Messages, NewUserMessage("more"))
	c.CurrentDraft.Title = "changed"
	c.DraftHistory = append(c.DraftHistory, DraftVersion{Version: 1})

	if len(s.Messages) != 1 {
		t.Errorf("clone mutated original messages: %d", len(s.Messages))
	}
	if s.CurrentDraft.Title != "Grounding" {
		t.Errorf("clone mutated original draft: %q", s.CurrentDraft.Title)
	}
	if len(s.DraftHistory) != 0 {
		t.Error("clone mutated original draft history")
	}
}

func TestCurrentVersion(t *testing.T) {
	s := NewState()
	if got := s.CurrentVersion(); got != 0 {
		t.Fatalf("expected version 0 for empty history, got %d", got)
	}
	s.DraftHistory = append(s.DraftHistory, DraftVersion{Version: 1}, DraftVersion{Version: 2})
	if got := s.CurrentVersion(); got != 2 {
		t.Fatalf("expected version 2, got %d", got)
	}
}

func TestLatestCritiquePerVersion(t *testing.T) {
	s := NewState()
	s.Critiques = []Critique{
		{Author: "safety_guardian", DraftVersion: 1, Approved: false},
		{Author: "safety_guardian", DraftVersion: 2, Approved: true},
		{Author: "clinical_critic", DraftVersion: 1, Approved: true},
	}

	c := s.LatestCritique("safety_guardian", 2)
	if c == nil || !c.Approved {
		t.Fatal("expected approved safety critique for version 2")
	}
	if got := s.LatestCritique("clinical_critic", 2); got != nil {
		t.Error("clinical approval for version 1 must not count for version 2")
	}
}

func TestLastAndFirstUserMessage(t *testing.T) {
	msgs := []Message{
		NewSystemMessage("sys"),
		NewUserMessage("first"),
		NewAssistantMessage("drafter", "draft ready"),
		NewUserMessage("second"),
	}
	if got := LastUserMessage(msgs); got != "second" {
		t.Errorf("LastUserMessage = %q", got)
	}
	if got := FirstUserMessage(msgs); got != "first" {
		t.Errorf("FirstUserMessage = %q", got)
	}
	if got := LastUserMessage(nil); got != "" {
		t.Errorf("LastUserMessage(nil) = %q", got)
	}
}

func TestIsErrorCode(t *testing.T) {
	base := NewError(ErrThreadNotFound, "no such thread")
	if !IsErrorCode(base, ErrThreadNotFound) {
		t.Error("expected code match")
	}
	wrapped := NewError(ErrInternalError, "outer").WithCause(base)
	if !IsErrorCode(wrapped, ErrInternalError) {
		t.Error("outermost code wins")
	}
	if IsErrorCode(nil, ErrThreadNotFound) {
		t.Error("nil is never a match")
	}
}
