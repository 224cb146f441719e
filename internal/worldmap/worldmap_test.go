package worldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameToIDAndBack(t *testing.T) {
	tests := []struct {
		name string
		id   uint16
	}{
		{"Ravana", 21},
		{"Omega", 39},
		{"Louisoix", 83},
		{"Raiden", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := NameToID(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.id, id)

			name, ok := IDToName(tt.id)
			assert.True(t, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestNameToIDUnrecognized(t *testing.T) {
	_, ok := NameToID("Midgar")
	assert.False(t, ok)
}

func TestIDToNameUnrecognized(t *testing.T) {
	_, ok := IDToName(0)
	assert.False(t, ok)

	_, ok = IDToName(9999)
	assert.False(t, ok)
}

func TestEveryEntryRoundTrips(t *testing.T) {
	for _, e := range worldTable {
		id, ok := NameToID(e.name)
		assert.True(t, ok, "name %s", e.name)
		assert.Equal(t, e.id, id)

		name, ok := IDToName(e.id)
		assert.True(t, ok, "id %d", e.id)
		assert.Equal(t, e.name, name)
	}
}
