package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

const drafterSystemPrompt = `You are an expert CBT exercise designer.
Produce one structured cognitive behavioral therapy exercise tailored to
the user's challenge. Reply with a JSON object only:
{"title": "...", "content": "...", "instructions": "..."}
- title: short, specific name for the exercise
- content: the full exercise in markdown
- instructions: how the patient should practice it
When revising, address every critique you are given.`

// DrafterAgent writes and revises exercise drafts. Every successful run
// appends a new draft version and bumps total_revisions.
type DrafterAgent struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewDrafterAgent creates the drafting node.
func NewDrafterAgent(provider llm.Provider, logger *zap.Logger) *DrafterAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrafterAgent{provider: provider, logger: logger}
}

// Run produces the next draft version. Unparseable model output is a
// node failure, not a silent fallback; the run aborts and the last
// checkpoint stays valid.
func (a *DrafterAgent) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{
		Messages: a.buildPrompt(state),
		JSONMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("draft completion: %w", err)
	}

	var draft types.ExerciseDraft
	if err := parseJSON(resp.Content, &draft); err != nil {
		return nil, types.NewError(types.ErrNodeFailed, "drafter returned unparseable output").WithCause(err)
	}
	if draft.Title == "" || draft.Content == "" {
		return nil, types.NewError(types.ErrNodeFailed, "drafter returned an incomplete draft")
	}

	version := state.CurrentVersion() + 1
	notes := "initial draft"
	if version > 1 {
		notes = fmt.Sprintf("revision addressing critiques of v%d", version-1)
	}

	meta := state.Metadata
	meta.TotalRevisions++

	a.logger.Info("draft produced",
		zap.Int("version", version), zap.String("title", draft.Title))

	return &workflow.Delta{
		CurrentDraft: &draft,
		DraftHistory: []types.DraftVersion{
			types.NewDraftVersion(version, draft, NodeDrafter, notes),
		},
		Metadata: &meta,
		Scratchpad: []types.AgentNote{
			types.NewNote(NodeDrafter, types.PriorityInfo,
				fmt.Sprintf("produced draft v%d: %s", version, draft.Title)),
		},
	}, nil
}

func (a *DrafterAgent) buildPrompt(state *types.State) []types.Message {
	msgs := []types.Message{types.NewSystemMessage(drafterSystemPrompt)}

	request := types.FirstUserMessage(state.Messages)
	latest := types.LastUserMessage(state.Messages)
	var b strings.Builder
	fmt.Fprintf(&b, "Original request: %s\n", request)
	if latest != request {
		fmt.Fprintf(&b, "Latest user message: %s\n", latest)
	}

	if state.CurrentDraft != nil {
		fmt.Fprintf(&b, "\nCurrent draft (v%d) to revise:\nTitle: %s\n%s\nInstructions: %s\n",
			state.CurrentVersion(), state.CurrentDraft.Title,
			state.CurrentDraft.Content, state.CurrentDraft.Instructions)

		version := state.CurrentVersion()
		for _, c := range state.Critiques {
			if c.DraftVersion == version && !c.Approved {
				fmt.Fprintf(&b, "\nCritique from %s: %s\n", c.Author, c.Content)
			}
		}
	}

	for _, note := range state.Scratchpad {
		if note.Priority == types.PriorityCritical ||
			(note.Target == NodeDrafter && note.Priority == types.PriorityWarning) {
			fmt.Fprintf(&b, "\nNote from %s: %s\n", note.Author, note.Content)
		}
	}

	return append(msgs, types.NewUserMessage(b.String()))
}
