package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 🧪 TestDefaultFileFormatter tests the default file outcome formatting
func TestDefaultFileFormatter(t *testing.T) {
	tests := []struct {
		name        string
		info        FileInfo
		want        string
		description string
	}{
		{
			name: "rewritten_file",
			info: FileInfo{
				Path:          "src/commands.rs",
				Outcome:       OutcomeRewritten,
				Substitutions: 3,
			},
			want:        "📝 Rewrote src/commands.rs (3 substitutions)",
			description: "should show rewrite symbol and substitution count",
		},
		{
			name: "unchanged_file",
			info: FileInfo{
				Path:    "src/main.rs",
				Outcome: OutcomeUnchanged,
			},
			want:        "👍 Unchanged src/main.rs",
			description: "should show unchanged symbol for untouched files",
		},
		{
			name: "rejected_file",
			info: FileInfo{
				Path:    "src/store.rs",
				Outcome: OutcomeRejected,
				Reason:  "unbalanced delimiters",
			},
			want:        "🚫 Rejected src/store.rs: unbalanced delimiters",
			description: "should show rejection symbol and the reason",
		},
		{
			name: "failed_file",
			info: FileInfo{
				Path:    "src/gone.rs",
				Outcome: OutcomeFailed,
			},
			want:        "❌ Failed src/gone.rs",
			description: "should show failure symbol for errored files",
		},
		{
			name: "unknown_outcome",
			info: FileInfo{
				Path: "src/limbo.rs",
			},
			want:        "❓ src/limbo.rs",
			description: "should flag files with no recorded outcome",
		},
		{
			name: "empty_path",
			info: FileInfo{
				Outcome: OutcomeUnchanged,
			},
			want:        "👍 Unchanged ",
			description: "should handle empty path gracefully",
		},
	}

	formatter := NewDefaultFileFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.FormatFileOutcome(tt.info)
			assert.Equal(t, tt.want, got, tt.description)
		})
	}
}

// 🧪 TestProgressFormatting tests progress message formatting
func TestProgressFormatting(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
		msg      string
	}{
		{
			name:     "zero_progress",
			current:  0,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiProgress, 0, 10, 0),
			msg:      "should show 0% progress",
		},
		{
			name:     "half_progress",
			current:  5,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiProgress, 5, 10, 50),
			msg:      "should show 50% progress",
		},
		{
			name:     "complete",
			current:  10,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 10, 10, 100),
			msg:      "should show 100% progress",
		},
		{
			name:     "zero_total",
			current:  0,
			total:    0,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 0, 0, 0),
			msg:      "should handle zero total",
		},
		{
			name:     "zero_total_with_current",
			current:  5,
			total:    0,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 5, 0, 0),
			msg:      "should handle zero total with positive current",
		},
		{
			name:     "current_exceeds_total",
			current:  15,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 15, 10, 100),
			msg:      "should cap at 100% when current exceeds total",
		},
		{
			name:     "negative_values",
			current:  -1,
			total:    -1,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 0, 0, 0),
			msg:      "should clamp negative values to zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewDefaultFileFormatter()
			result := formatter.FormatProgress(tt.current, tt.total)
			assert.Equal(t, tt.expected, result, tt.msg)
		})
	}
}

// 🧪 TestErrorFormatting tests error message formatting
func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		want        string
		description string
	}{
		{
			name:        "simple_error",
			err:         assert.AnError,
			want:        "❌ Error: assert.AnError general error for testing",
			description: "should format simple errors",
		},
		{
			name:        "nil_error",
			err:         nil,
			want:        "",
			description: "should return empty string for nil errors",
		},
	}

	formatter := NewDefaultFileFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.FormatError(tt.err)
			assert.Equal(t, tt.want, got, tt.description)
		})
	}
}
