package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type verdict struct {
		Approved bool   `json:"approved"`
		Critique string `json:"critique"`
	}

	tests := []struct {
		name    string
		content string
		want    verdict
		wantErr bool
	}{
		{
			name:    "bare object",
			content: `{"approved": true, "critique": "solid"}`,
			want:    verdict{Approved: true, Critique: "solid"},
		},
		{
			name:    "surrounding whitespace",
			content: "\n  {\"approved\": false, \"critique\": \"needs work\"}  \n",
			want:    verdict{Approved: false, Critique: "needs work"},
		},
		{
			name:    "json code fence",
			content: "Here is my verdict:\n```json\n{\"approved\": true, \"critique\": \"ok\"}\n```\nDone.",
			want:    verdict{Approved: true, Critique: "ok"},
		},
		{
			name:    "untagged code fence",
			content: "```\n{\"approved\": true, \"critique\": \"fine\"}\n```",
			want:    verdict{Approved: true, Critique: "fine"},
		},
		{
			name:    "prose only",
			content: "I think this draft is great!",
			wantErr: true,
		},
		{
			name:    "fence with broken json",
			content: "```json\n{approved: yes}\n```",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got verdict
			err := parseJSON(tt.content, &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-0.3))
	assert.Equal(t, 1.0, clampScore(1.7))
	assert.Equal(t, 0.62, clampScore(0.62))
}
