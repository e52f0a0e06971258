package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
)

func TestSamplesAreCleanTranscripts(t *testing.T) {
	samples := List()
	require.Len(t, samples, 3)

	for _, s := range samples {
		assert.NotEmpty(t, s.Name, s.ID)
		assert.Len(t, s.Messages, 30, s.ID)
		assert.Equal(t, chat.RoleUser, s.Messages[0].Role, s.ID)

		result := transcript.Validate(s.Messages)
		assert.True(t, result.IsValid, s.ID)
		assert.Empty(t, result.Warnings, s.ID)
	}
}

func TestGet(t *testing.T) {
	got, err := Get("leo-chef")
	require.NoError(t, err)
	assert.Equal(t, "Leo - Line Cook", got.Name)

	_, err = Get("nobody")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTranscriptRoundTrip(t *testing.T) {
	s, err := Get("sam-grad")
	require.NoError(t, err)

	assert.Equal(t, s.Messages, transcript.Parse(s.Transcript()))
}

func TestListReturnsCopies(t *testing.T) {
	first := List()
	first[0].Messages[0] = chat.UserMessage("changed")

	again := List()
	assert.NotEqual(t, "changed", again[0].Messages[0].Content)
}
