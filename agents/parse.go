package agents

import (
	"encoding/json"
	"strings"
)

// parseJSON decodes model output into v. Providers asked for JSON mode
// usually return a bare object, but some wrap it in a markdown code
// fence; both forms are accepted. Tries in order: direct parse, a
// ```json fenced block, an untagged ``` fenced block.
func parseJSON(content string, v any) error {
	trimmed := strings.TrimSpace(content)
	direct := json.Unmarshal([]byte(trimmed), v)
	if direct == nil {
		return nil
	}

	if idx := strings.Index(content, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(content[start:], "```"); end != -1 {
			block := strings.TrimSpace(content[start : start+end])
			if err := json.Unmarshal([]byte(block), v); err == nil {
				return nil
			}
		}
	}

	if idx := strings.Index(content, "```"); idx != -1 {
		start := idx + len("```")
		// Skip a language tag on the opening line.
		if nl := strings.Index(content[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(content[start:], "```"); end != -1 {
			block := strings.TrimSpace(content[start : start+end])
			if err := json.Unmarshal([]byte(block), v); err == nil {
				return nil
			}
		}
	}

	return direct
}

// clampScore bounds a model-reported quality score to [0,1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
