package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSearchAndFetch(t *testing.T) {
	s := NewStatic()
	s.Seed(CharacterResult{LodestoneID: 1, Name: "Alphinaud", World: "Balmung"}, "nothing yet")

	results, pages, err := s.CharacterSearch(context.Background(), "Alphinaud", "Balmung", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].LodestoneID)

	profile, err := s.Character(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "nothing yet", profile.ProfileText)
}

func TestStaticSearchMissesOnWrongWorldOrPage(t *testing.T) {
	s := NewStatic()
	s.Seed(CharacterResult{LodestoneID: 1, Name: "Alphinaud", World: "Balmung"}, "")

	results, _, err := s.CharacterSearch(context.Background(), "Alphinaud", "Excalibur", 1)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, _, err = s.CharacterSearch(context.Background(), "Alphinaud", "Balmung", 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStaticCharacterUnknownID(t *testing.T) {
	s := NewStatic()
	_, err := s.Character(context.Background(), 999)
	assert.Error(t, err)
}

func TestStaticSetProfileText(t *testing.T) {
	s := NewStatic()
	s.Seed(CharacterResult{LodestoneID: 1, Name: "Alphinaud", World: "Balmung"}, "old text")

	s.SetProfileText(1, "contains the challenge now")

	profile, err := s.Character(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "contains the challenge now", profile.ProfileText)
}
