package transcript

import (
	"fmt"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

const (
	RecommendedMessages = 30
	MaxUsefulMessages   = 50
	maxRoleImbalance    = 5
	shortMessageLength  = 10
	shortMessageRatio   = 0.3
)

// ValidationResult reports whether a transcript may be sent to extraction.
type ValidationResult struct {
	IsValid  bool     `json:"isValid" yaml:"isValid"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Validate applies the transcript quality rules. Only the empty transcript
// stops evaluation early; every other rule adds its own warning.
func Validate(messages []chat.Message) ValidationResult {
	if len(messages) == 0 {
		return ValidationResult{
			IsValid:  false,
			Warnings: []string{"No messages found in the conversation"},
		}
	}

	result := ValidationResult{IsValid: true, Warnings: []string{}}
	total := len(messages)

	if total < RecommendedMessages {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Only %d messages found. Recommended: %d messages for optimal memory extraction.", total, RecommendedMessages))
	}
	if total > MaxUsefulMessages {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d messages found. Using more than %d messages may not improve extraction quality.", total, MaxUsefulMessages))
	}

	userCount := lo.CountBy(messages, func(m chat.Message) bool { return m.Role == chat.RoleUser })
	aiCount := lo.CountBy(messages, func(m chat.Message) bool { return m.Role == chat.RoleAssistant })

	if userCount == 0 {
		result.IsValid = false
		result.Warnings = append(result.Warnings, "No user messages found in the conversation")
	}

	if diff := userCount - aiCount; diff > maxRoleImbalance || diff < -maxRoleImbalance {
		result.Warnings = append(result.Warnings,
			"Conversation seems unbalanced (significant difference between user and AI messages)")
	}

	short := lo.CountBy(messages, func(m chat.Message) bool { return utf8.RuneCountInString(m.Content) < shortMessageLength })
	if float64(short) > float64(total)*shortMessageRatio {
		result.Warnings = append(result.Warnings,
			"Many messages are very short. Longer, more detailed messages provide better memory extraction.")
	}

	return result
}
