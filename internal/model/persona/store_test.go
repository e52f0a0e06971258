package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-memory/backend/internal/apperr"
)

func TestSeedDefinesThreePersonas(t *testing.T) {
	store := NewMemoryStore(Seed())

	ids := make([]string, 0, 3)
	for _, p := range store.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{CalmMentor, WittyFriend, Therapist}, ids)

	want := map[string]float32{CalmMentor: 0.7, WittyFriend: 0.9, Therapist: 0.6}
	for _, p := range store.List() {
		assert.Equal(t, want[p.ID], p.Temperature, p.ID)
		assert.Greater(t, p.Temperature, float32(0))
		assert.LessOrEqual(t, p.Temperature, float32(1))
		assert.NotEmpty(t, p.SystemInstructions, p.ID)
		assert.NotEmpty(t, p.Characteristics, p.ID)
	}
}

func TestGetUnknownPersona(t *testing.T) {
	store := NewMemoryStore(Seed())

	_, err := store.Get("pirate")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListReturnsCopies(t *testing.T) {
	store := NewMemoryStore(Seed())

	list := store.List()
	list[0].Name = "mutated"
	list[0].Characteristics[0] = "mutated"

	got, err := store.Get(CalmMentor)
	require.NoError(t, err)
	assert.Equal(t, "Calm Mentor", got.Name)
	assert.Equal(t, "Reflective", got.Characteristics[0])
}
