// Package transcript turns pasted conversation text into chat messages and
// scores the result with quality heuristics.
package transcript

import (
	"regexp"
	"strings"

	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

var (
	userLine = regexp.MustCompile(`(?i)^user:\s*(.+)$`)
	aiLine   = regexp.MustCompile(`(?i)^ai:\s*(.+)$`)
)

// Parse reads "User: ..." and "AI: ..." lines in order. Any other line is
// dropped, so an empty result is possible and is not an error.
func Parse(raw string) []chat.Message {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	messages := make([]chat.Message, 0, len(lines)/2)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if match := userLine.FindStringSubmatch(trimmed); match != nil {
			messages = append(messages, chat.UserMessage(strings.TrimSpace(match[1])))
			continue
		}
		if match := aiLine.FindStringSubmatch(trimmed); match != nil {
			messages = append(messages, chat.AssistantMessage(strings.TrimSpace(match[1])))
		}
	}

	return messages
}

// Format renders messages back into the line format accepted by Parse.
func Format(messages []chat.Message) string {
	return join(messages, "\n")
}

// FormatBlocks renders messages separated by blank lines, the layout used
// inside prompts.
func FormatBlocks(messages []chat.Message) string {
	return join(messages, "\n\n")
}

func join(messages []chat.Message, sep string) string {
	var builder strings.Builder
	for i, msg := range messages {
		if i > 0 {
			builder.WriteString(sep)
		}
		builder.WriteString(msg.Role.Label())
		builder.WriteString(": ")
		builder.WriteString(msg.Content)
	}
	return builder.String()
}
