package status

import (
	"fmt"
)

// 🎨 Progress message building blocks
const (
	EmojiProgress = "⏳"
	EmojiComplete = "✅"
	MsgProgress   = "%s Progress: %d/%d (%d%%)"
)

// FileFormatter defines how file outcomes and progress should be formatted
type FileFormatter interface {
	// FormatFileOutcome formats one file's outcome as a status message
	FormatFileOutcome(info FileInfo) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOutcome formats a file outcome message with emojis
func (f *DefaultFileFormatter) FormatFileOutcome(info FileInfo) string {
	switch info.Outcome {
	case OutcomeRewritten:
		return fmt.Sprintf("📝 Rewrote %s (%d substitutions)", info.Path, info.Substitutions)
	case OutcomeUnchanged:
		return fmt.Sprintf("👍 Unchanged %s", info.Path)
	case OutcomeRejected:
		return fmt.Sprintf("🚫 Rejected %s: %s", info.Path, info.Reason)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", info.Path)
	default:
		return fmt.Sprintf("❓ %s", info.Path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	if current < 0 {
		current = 0
	}
	if total < 0 {
		total = 0
	}

	percentage := 0
	if total > 0 {
		percentage = current * 100 / total
	}
	if percentage > 100 {
		percentage = 100
	}

	emoji := EmojiProgress
	if current >= total {
		emoji = EmojiComplete
	}
	return fmt.Sprintf(MsgProgress, emoji, current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
