package ai

import (
	"testing"

	maildomain "mailpilot-backend/internal/mail/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     maildomain.Classification
	}{
		{
			name:     "clean JSON",
			response: `{"priority": "urgent", "reply_needed": true, "summary": "Deadline moved up"}`,
			want: maildomain.Classification{
				Priority:    maildomain.PriorityUrgent,
				ReplyNeeded: true,
				Summary:     "Deadline moved up",
			},
		},
		{
			name:     "JSON inside code fences",
			response: "```json\n{\"priority\": \"important\", \"reply_needed\": false, \"summary\": \"Weekly report\"}\n```",
			want: maildomain.Classification{
				Priority:    maildomain.PriorityImportant,
				ReplyNeeded: false,
				Summary:     "Weekly report",
			},
		},
		{
			name:     "JSON wrapped in prose",
			response: `Here is my classification: {"priority": "other", "reply_needed": false, "summary": "Newsletter"} Hope that helps!`,
			want: maildomain.Classification{
				Priority:    maildomain.PriorityOther,
				ReplyNeeded: false,
				Summary:     "Newsletter",
			},
		},
		{
			name:     "unknown priority degrades to other",
			response: `{"priority": "critical", "reply_needed": true, "summary": "x"}`,
			want: maildomain.Classification{
				Priority:    maildomain.PriorityOther,
				ReplyNeeded: true,
				Summary:     "x",
			},
		},
		{
			name:     "priority case and whitespace normalized",
			response: `{"priority": " Urgent ", "reply_needed": true, "summary": " trimmed "}`,
			want: maildomain.Classification{
				Priority:    maildomain.PriorityUrgent,
				ReplyNeeded: true,
				Summary:     "trimmed",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseClassification(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClassificationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{name: "no JSON at all", response: "I could not classify this email."},
		{name: "empty response", response: ""},
		{name: "broken JSON", response: `{"priority": "urgent", "reply_needed":}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseClassification(tt.response)
			assert.Error(t, err)
		})
	}
}
