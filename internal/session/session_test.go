package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUnauthenticated(t *testing.T) {
	s := New()
	assert.Equal(t, StateUnauthenticated, s.State())

	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestAuthenticate(t *testing.T) {
	s := New()
	s.Authenticate(42, "Warrior of Light", 21, []byte("pubkey"), true)

	assert.Equal(t, StateAuthenticated, s.State())
	id, ok := s.Identity()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	name, world := s.NameWorld()
	assert.Equal(t, "Warrior of Light", name)
	assert.Equal(t, uint16(21), world)
	assert.Equal(t, []byte("pubkey"), s.PublicKey())
	assert.True(t, s.AllowInvites())
}

func TestClearIdentityLeavesStateAlone(t *testing.T) {
	s := New()
	s.Authenticate(1, "Name", 21, nil, false)
	s.ClearIdentity()

	assert.Equal(t, StateAuthenticated, s.State())
	id, ok := s.Identity()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), id)
}

func TestCloseIsIdempotentAndFiresShutdown(t *testing.T) {
	s := New()
	s.Close()
	s.Close()

	assert.Equal(t, StateClosed, s.State())
	select {
	case <-s.Shutdown:
	default:
		t.Fatal("Shutdown channel was not closed")
	}
}

func TestEnqueueDropsOnFullQueue(t *testing.T) {
	s := New()
	for i := 0; i < outboundQueueSize; i++ {
		assert.True(t, s.Enqueue([]byte("frame")))
	}
	assert.False(t, s.Enqueue([]byte("one too many")))
}

func TestSetAllowInvitesReturnsNewValue(t *testing.T) {
	s := New()
	assert.True(t, s.SetAllowInvites(true))
	assert.True(t, s.AllowInvites())
	assert.False(t, s.SetAllowInvites(false))
	assert.False(t, s.AllowInvites())
}
