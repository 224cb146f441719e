package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShapeAndUniqueness(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a.ShortToken, 8)
	assert.Len(t, a.LongToken, 24)
	assert.NotEqual(t, a.ShortToken, b.ShortToken)
	assert.NotEqual(t, a.LongToken, b.LongToken)

	for _, c := range a.ShortToken + a.LongToken {
		assert.Contains(t, base58Alphabet, string(c))
	}
}

func TestKeyString(t *testing.T) {
	k := Key{ShortToken: "abc12345", LongToken: "def6789012345678901234"}
	s := k.String()

	assert.True(t, strings.HasPrefix(s, prefix+"_"))
	parts := strings.Split(s, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, prefix, parts[0])
	assert.Equal(t, k.ShortToken, parts[1])
	assert.Equal(t, k.LongToken, parts[2])
}
