package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
)

func sampleProfile() memory.Profile {
	return memory.Profile{
		Preferences: memory.Preferences{
			Hobbies: []string{"rock climbing", "baking sourdough"},
			Likes:   []string{"quiet mornings"},
		},
		EmotionalPatterns: memory.EmotionalPatterns{
			StressTriggers:     []string{"tight deadlines"},
			CommunicationStyle: "direct and analytical",
		},
		Facts: memory.Facts{
			Relationships: []string{"sister Maya"},
			Goals:         []string{"run a marathon"},
		},
	}
}

func TestExtractExactPhrase(t *testing.T) {
	refs := Extract("I love rock climbing", sampleProfile())
	assert.Contains(t, refs, "Hobby: rock climbing")
}

func TestExtractNoOverlap(t *testing.T) {
	assert.Empty(t, Extract("Sure, ok.", sampleProfile()))
}

func TestExtractKeywordMatchIsCaseInsensitive(t *testing.T) {
	refs := Extract("Those DEADLINES again? And how is Maya doing?", sampleProfile())
	assert.Equal(t, []string{"Stress Trigger: tight deadlines", "Relationship: sister Maya"}, refs)
}

func TestExtractIgnoresShortWords(t *testing.T) {
	refs := Extract("Go run, you can do it", sampleProfile())
	assert.Empty(t, refs)
}

func TestExtractCommunicationStyleByKeyword(t *testing.T) {
	refs := Extract("Being analytical helps you here.", sampleProfile())
	assert.Equal(t, []string{"Communication Style: direct and analytical"}, refs)
}

func TestExtractKeepsProfileOrderWithoutDuplicates(t *testing.T) {
	profile := sampleProfile()
	profile.Preferences.Likes = append(profile.Preferences.Likes, "quiet mornings")

	refs := Extract("Quiet mornings before climbing, then some baking.", profile)

	assert.Equal(t, []string{
		"Hobby: rock climbing",
		"Hobby: baking sourdough",
		"Like: quiet mornings",
	}, refs)
}

func TestMatchesEmptyItem(t *testing.T) {
	assert.False(t, Matches("anything at all", ""))
	assert.False(t, Matches("anything at all", "   "))
}
