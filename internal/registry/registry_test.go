package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/extrachat/server/internal/session"
)

func TestInstallAndLookup(t *testing.T) {
	r := New()
	s := session.New()

	r.Install(1, "Name", 21, s)

	got, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, r.Contains(1))

	byNW, id, ok := r.LookupByNameWorld("name", 21)
	assert.True(t, ok)
	assert.Same(t, s, byNW)
	assert.Equal(t, uint64(1), id)
}

func TestInstallEvictsPriorSession(t *testing.T) {
	r := New()
	first := session.New()
	second := session.New()

	r.Install(1, "Name", 21, first)
	r.Install(1, "Name", 21, second)

	_, ok := first.Identity()
	assert.False(t, ok, "evicted session should have its identity cleared")

	select {
	case <-first.Shutdown:
	default:
		t.Fatal("evicted session should have been closed")
	}

	got, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestRemoveIsNoOpForEvictedSession(t *testing.T) {
	r := New()
	first := session.New()
	second := session.New()

	r.Install(1, "Name", 21, first)
	r.Install(1, "Name", 21, second)

	r.Remove(1, "Name", 21, first)

	got, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestRemoveDeletesCurrentSession(t *testing.T) {
	r := New()
	s := session.New()
	r.Install(1, "Name", 21, s)

	r.Remove(1, "Name", 21, s)

	_, ok := r.Lookup(1)
	assert.False(t, ok)
	_, _, ok = r.LookupByNameWorld("Name", 21)
	assert.False(t, ok)
}

func TestSecretsRequestTakeIsOneShot(t *testing.T) {
	r := New()
	var id [16]byte
	id[0] = 7

	r.PutSecretsRequest(id, SecretsRequest{Requester: 9, Number: 3})

	req, ok := r.TakeSecretsRequest(id)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), req.Requester)

	_, ok = r.TakeSecretsRequest(id)
	assert.False(t, ok, "a second take on the same id should find nothing")
}

func TestPeekSecretsRequestLeavesRecordInPlace(t *testing.T) {
	r := New()
	var id [16]byte
	id[0] = 8

	r.PutSecretsRequest(id, SecretsRequest{Requester: 9, Number: 3})

	req, ok := r.PeekSecretsRequest(id)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), req.Requester)

	req, ok = r.PeekSecretsRequest(id)
	assert.True(t, ok, "peek should not consume the record")
	assert.Equal(t, uint64(9), req.Requester)

	r.DeleteSecretsRequest(id)
	_, ok = r.PeekSecretsRequest(id)
	assert.False(t, ok, "delete should consume the record")
}

func TestMessagesSentCounter(t *testing.T) {
	r := New()
	assert.Equal(t, uint64(0), r.MessagesSent())
	r.IncrMessagesSent()
	r.IncrMessagesSent()
	assert.Equal(t, uint64(2), r.MessagesSent())
}

func TestSessionCountAndForEach(t *testing.T) {
	r := New()
	r.Install(1, "A", 21, session.New())
	r.Install(2, "B", 21, session.New())

	assert.Equal(t, 2, r.SessionCount())

	seen := map[uint64]bool{}
	r.ForEach(func(identity uint64, _ *session.Session) {
		seen[identity] = true
	})
	assert.Len(t, seen, 2)
}
