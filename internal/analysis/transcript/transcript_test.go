package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

func conversation(n int) []chat.Message {
	messages := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			messages = append(messages, chat.UserMessage(fmt.Sprintf("I went climbing again today, session %d", i)))
		} else {
			messages = append(messages, chat.AssistantMessage(fmt.Sprintf("That sounds great, how did session %d go?", i)))
		}
	}
	return messages
}

func TestParseKeepsOrderAndTrims(t *testing.T) {
	raw := "User:   I love rock climbing  \n\nAI: Tell me more!\nnoise line\n  user: lowercase works\nAi:mixed case"

	got := Parse(raw)

	require.Len(t, got, 4)
	assert.Equal(t, chat.UserMessage("I love rock climbing"), got[0])
	assert.Equal(t, chat.AssistantMessage("Tell me more!"), got[1])
	assert.Equal(t, chat.UserMessage("lowercase works"), got[2])
	assert.Equal(t, chat.AssistantMessage("mixed case"), got[3])
}

func TestParseDropsUnmatchedLines(t *testing.T) {
	assert.Empty(t, Parse("hello there\nSystem: ignored\nUser:\n   \n"))
	assert.Empty(t, Parse(""))
}

func TestParseHandlesWindowsLineEndings(t *testing.T) {
	got := Parse("User: first\r\nAI: second\r\n")
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func TestParseFormatRoundTrip(t *testing.T) {
	raw := strings.Join([]string{
		"User: I started running at 6 AM again",
		"AI: How does it feel to be back?",
		"User: Honestly great, it clears my head",
		"AI: Morning runs seem important to you",
	}, "\n")

	first := Parse(raw)
	second := Parse(Format(first))

	assert.Equal(t, first, second)
	assert.Equal(t, raw, Format(first))
}

func TestFormatBlocksUsesBlankLines(t *testing.T) {
	got := FormatBlocks([]chat.Message{chat.UserMessage("hi there"), chat.AssistantMessage("hello")})
	assert.Equal(t, "User: hi there\n\nAI: hello", got)
}

func TestValidateEmptyIsInvalid(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "No messages found")
}

func TestValidateBalancedThirtyHasNoWarnings(t *testing.T) {
	result := Validate(conversation(30))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestValidateSixtyWarnsAboutUpperBound(t *testing.T) {
	result := Validate(conversation(60))
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "more than 50")

	userOnly := make([]chat.Message, 60)
	for i := range userOnly {
		userOnly[i] = chat.UserMessage("a long enough user message")
	}
	unbalanced := Validate(userOnly)
	assert.True(t, unbalanced.IsValid)
	assert.Contains(t, strings.Join(unbalanced.Warnings, "|"), "more than 50")
	assert.Contains(t, strings.Join(unbalanced.Warnings, "|"), "unbalanced")
}

func TestValidateFewMessagesWarns(t *testing.T) {
	result := Validate(conversation(10))
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Only 10 messages")
}

func TestValidateNoUserMessagesIsInvalid(t *testing.T) {
	messages := make([]chat.Message, 30)
	for i := range messages {
		messages[i] = chat.AssistantMessage("assistant speaking at length")
	}

	result := Validate(messages)

	assert.False(t, result.IsValid)
	joined := strings.Join(result.Warnings, "|")
	assert.Contains(t, joined, "No user messages")
	assert.Contains(t, joined, "unbalanced")
}

func TestValidateShortMessages(t *testing.T) {
	messages := conversation(30)
	for i := 0; i < 10; i++ {
		messages[i].Content = "ok"
	}

	result := Validate(messages)

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "very short")
}

func TestValidateShortThresholdIsExclusive(t *testing.T) {
	messages := conversation(30)
	for i := 0; i < 9; i++ {
		messages[i].Content = "ok"
	}
	assert.Empty(t, Validate(messages).Warnings)
}
