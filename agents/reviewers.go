package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/disha18704/cerina-health-assignment/llm"
	"github.com/disha18704/cerina-health-assignment/types"
	"github.com/disha18704/cerina-health-assignment/workflow"
)

const safetySystemPrompt = `You are a safety reviewer for CBT exercises.
Check the draft for crisis-escalation risk, self-harm triggers, medical
overreach, and anything a vulnerable reader could misuse. Reply with a
JSON object only:
{"approved": true/false, "critique": "...", "safety_score": 0.0-1.0}
Approve only when the exercise is safe to hand to a patient unsupervised.`

const clinicalSystemPrompt = `You are a clinical reviewer for CBT exercises.
Assess whether the draft reflects sound CBT methodology, is empathetic,
and gives the patient clear actionable steps. Reply with a JSON object only:
{"approved": true/false, "critique": "...", "empathy_score": 0.0-1.0, "clarity_score": 0.0-1.0}
Approve only when you would use this exercise in practice.`

// SafetyGuardian reviews the current draft for patient safety.
type SafetyGuardian struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewSafetyGuardian creates the safety review node.
func NewSafetyGuardian(provider llm.Provider, logger *zap.Logger) *SafetyGuardian {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafetyGuardian{provider: provider, logger: logger}
}

// Run reviews the current draft version, records a critique bound to
// that version, and updates metadata.safety_score.
func (a *SafetyGuardian) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	var verdict struct {
		Approved    bool    `json:"approved"`
		Critique    string  `json:"critique"`
		SafetyScore float64 `json:"safety_score"`
	}
	if err := review(ctx, a.provider, NodeSafetyGuardian, safetySystemPrompt, state, &verdict); err != nil {
		return nil, err
	}

	meta := state.Metadata
	score := clampScore(verdict.SafetyScore)
	meta.SafetyScore = &score

	a.logger.Info("safety review complete",
		zap.Int("version", state.CurrentVersion()),
		zap.Bool("approved", verdict.Approved),
		zap.Float64("safety_score", score))

	delta := reviewDelta(NodeSafetyGuardian, state, verdict.Approved, verdict.Critique)
	delta.Metadata = &meta
	return delta, nil
}

// ClinicalCritic reviews the current draft for clinical quality.
type ClinicalCritic struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewClinicalCritic creates the clinical review node.
func NewClinicalCritic(provider llm.Provider, logger *zap.Logger) *ClinicalCritic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClinicalCritic{provider: provider, logger: logger}
}

// Run reviews the current draft version, records a critique bound to
// that version, and updates the empathy and clarity scores.
func (a *ClinicalCritic) Run(ctx context.Context, state *types.State) (*workflow.Delta, error) {
	var verdict struct {
		Approved     bool    `json:"approved"`
		Critique     string  `json:"critique"`
		EmpathyScore float64 `json:"empathy_score"`
		ClarityScore float64 `json:"clarity_score"`
	}
	if err := review(ctx, a.provider, NodeClinicalCritic, clinicalSystemPrompt, state, &verdict); err != nil {
		return nil, err
	}

	meta := state.Metadata
	empathy := clampScore(verdict.EmpathyScore)
	clarity := clampScore(verdict.ClarityScore)
	meta.EmpathyScore = &empathy
	meta.ClarityScore = &clarity

	a.logger.Info("clinical review complete",
		zap.Int("version", state.CurrentVersion()),
		zap.Bool("approved", verdict.Approved),
		zap.Float64("empathy_score", empathy),
		zap.Float64("clarity_score", clarity))

	delta := reviewDelta(NodeClinicalCritic, state, verdict.Approved, verdict.Critique)
	delta.Metadata = &meta
	return delta, nil
}

// review runs one reviewer completion over the current draft and decodes
// the verdict into out. A missing draft or unparseable verdict is a node
// failure.
func review(ctx context.Context, provider llm.Provider, reviewer, systemPrompt string, state *types.State, out any) error {
	if state.CurrentDraft == nil {
		return types.NewError(types.ErrNodeFailed,
			fmt.Sprintf("%s activated with no draft to review", reviewer))
	}

	d := state.CurrentDraft
	prompt := fmt.Sprintf(
		"Original request: %s\n\nDraft v%d to review:\nTitle: %s\n\n%s\n\nInstructions: %s",
		types.FirstUserMessage(state.Messages), state.CurrentVersion(),
		d.Title, d.Content, d.Instructions)

	resp, err := provider.Completion(ctx, &llm.ChatRequest{
		Messages: []types.Message{
			types.NewSystemMessage(systemPrompt),
			types.NewUserMessage(prompt),
		},
		JSONMode: true,
	})
	if err != nil {
		return fmt.Errorf("%s completion: %w", reviewer, err)
	}
	if err := parseJSON(resp.Content, out); err != nil {
		return types.NewError(types.ErrNodeFailed,
			fmt.Sprintf("%s returned an unparseable verdict", reviewer)).WithCause(err)
	}
	return nil
}

func reviewDelta(reviewer string, state *types.State, approved bool, critique string) *workflow.Delta {
	priority := types.PriorityInfo
	verdict := "approved"
	if !approved {
		priority = types.PriorityWarning
		verdict = "rejected"
	}
	note := types.NewNote(reviewer, priority,
		fmt.Sprintf("%s draft v%d: %s", verdict, state.CurrentVersion(), critique))
	note.Target = NodeDrafter
	return &workflow.Delta{
		Critiques: []types.Critique{{
			Author:       reviewer,
			Content:      critique,
			Approved:     approved,
			DraftVersion: state.CurrentVersion(),
		}},
		LastReviewer: workflow.StringPtr(reviewer),
		Scratchpad:   []types.AgentNote{note},
	}
}
