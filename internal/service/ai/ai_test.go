package ai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
)

type fakeChatModel struct {
	mu        sync.Mutex
	reply     string
	chunks    []string
	err       error
	lastInput []*schema.Message
	lastOpts  *model.Options
}

func (f *fakeChatModel) record(input []*schema.Message, opts []model.Option) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInput = input
	f.lastOpts = model.GetCommonOptions(&model.Options{}, opts...)
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.record(input, opts)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.record(input, opts)
	if f.err != nil {
		return nil, f.err
	}
	messages := make([]*schema.Message, len(f.chunks))
	for i, c := range f.chunks {
		messages[i] = schema.AssistantMessage(c, nil)
	}
	return schema.StreamReaderFromArray(messages), nil
}

func profileFixture() memory.Profile {
	p := memory.Profile{
		Preferences: memory.Preferences{Hobbies: []string{"rock climbing"}, Likes: []string{"pour-over coffee"}},
		EmotionalPatterns: memory.EmotionalPatterns{
			StressTriggers:     []string{"tight deadlines"},
			JoySources:         []string{"finishing a project"},
			CommunicationStyle: "direct and analytical",
		},
		Facts: memory.Facts{Goals: []string{"run a marathon"}},
	}
	p.Normalize()
	return p
}

func TestServiceGeneratePassesPromptAndOptions(t *testing.T) {
	fake := &fakeChatModel{reply: `{"ok":true}`}
	svc, err := NewServiceWithModel(context.Background(), fake, false, nil)
	require.NoError(t, err)

	prompt := `Return {"ok": true} exactly`
	out, err := svc.Generate(context.Background(), prompt, Options{Temperature: 0.3, MaxTokens: 4096, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	require.Len(t, fake.lastInput, 1)
	assert.Equal(t, schema.User, fake.lastInput[0].Role)
	assert.Equal(t, prompt, fake.lastInput[0].Content)
	require.NotNil(t, fake.lastOpts.Temperature)
	assert.InDelta(t, 0.3, *fake.lastOpts.Temperature, 1e-6)
	require.NotNil(t, fake.lastOpts.MaxTokens)
	assert.Equal(t, 4096, *fake.lastOpts.MaxTokens)
}

func TestServiceLogsUnsupportedJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{reply: "{}"}, false, logger)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "json response format")

	_, err = svc.Generate(context.Background(), "hi", Options{JSON: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "json response format not supported")
}

func TestServiceGenerateWrapsModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("quota exceeded")}
	svc, err := NewServiceWithModel(context.Background(), fake, false, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestServiceStream(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"Hel", "lo ", "there"}}
	svc, err := NewServiceWithModel(context.Background(), fake, true, nil)
	require.NoError(t, err)

	stream, err := svc.Stream(context.Background(), "hi", Options{Temperature: 0.9})
	require.NoError(t, err)
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		builder.WriteString(chunk.Content)
	}
	assert.Equal(t, "Hello there", builder.String())
}

func TestServiceStreamDisabled(t *testing.T) {
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{}, false, nil)
	require.NoError(t, err)

	_, err = svc.Stream(context.Background(), "hi", Options{})
	assert.Error(t, err)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("  {\"a\":1}\n"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```{\"a\":1}```"))
	assert.Equal(t, "not json", CleanJSON("not json"))
}

func TestBuildExtractionPrompt(t *testing.T) {
	messages := []chat.Message{
		chat.UserMessage("I went bouldering again"),
		chat.AssistantMessage("How was it?"),
	}

	prompt := BuildExtractionPrompt(messages)

	assert.Contains(t, prompt, "User: I went bouldering again\n\nAI: How was it?")
	assert.Contains(t, prompt, `"communicationStyle"`)
	assert.Contains(t, prompt, "2 or more times")
	assert.Contains(t, prompt, "2-8 items")
	assert.Equal(t, prompt, BuildExtractionPrompt(messages))
}

func TestBuildPersonaPrompt(t *testing.T) {
	p, err := persona.NewMemoryStore(persona.Seed()).Get(persona.WittyFriend)
	require.NoError(t, err)

	prompt := BuildPersonaPrompt(p, "How do I handle stress?", profileFixture())

	assert.True(t, strings.HasPrefix(prompt, p.SystemInstructions))
	assert.Contains(t, prompt, "**Preferences:**\nHobbies: rock climbing\nLikes: pour-over coffee")
	assert.Contains(t, prompt, "**Emotional Patterns:**\nStress Triggers: tight deadlines\nJoy Sources: finishing a project\nCommunication Style: direct and analytical")
	assert.Contains(t, prompt, "**Important Facts:**\nGoals: run a marathon")
	assert.Contains(t, prompt, "**USER'S QUESTION:**\nHow do I handle stress?")
	assert.True(t, strings.HasSuffix(prompt, "**YOUR RESPONSE (as Witty Friend):**"))
	assert.NotContains(t, prompt, "Dislikes:")
	assert.Equal(t, prompt, BuildPersonaPrompt(p, "How do I handle stress?", profileFixture()))
}

func TestFormatMemoryContextOmitsEmptySections(t *testing.T) {
	profile := memory.Profile{EmotionalPatterns: memory.EmotionalPatterns{
		JoySources:         []string{"long walks"},
		CommunicationStyle: "reflective",
	}}

	assert.Empty(t, FormatMemoryContext(profile))

	profile.Facts.Values = []string{"honesty"}
	assert.Equal(t, "**Important Facts:**\nValues: honesty", FormatMemoryContext(profile))

	profile.Preferences.Dislikes = []string{"crowds"}
	assert.Equal(t, "**Preferences:**\nDislikes: crowds\n\n**Important Facts:**\nValues: honesty", FormatMemoryContext(profile))
}
