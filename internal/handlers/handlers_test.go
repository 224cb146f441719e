package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

func TestRandomChannelIDIsNonZeroAndUnique(t *testing.T) {
	a := randomChannelID()
	b := randomChannelID()

	var zero [16]byte
	assert.NotEqual(t, zero, a)
	assert.NotEqual(t, a, b)
}

func TestRequireIdentityUnauthenticated(t *testing.T) {
	s := session.New()
	_, ok := requireIdentity(s)
	assert.False(t, ok)
}

func TestRequireIdentityAuthenticated(t *testing.T) {
	s := session.New()
	s.Authenticate(42, "Name", 21, nil, false)

	id, ok := requireIdentity(s)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestDispatchRejectsNonExemptRequestsPreAuth(t *testing.T) {
	h := &Handlers{registry: registry.New()}
	s := session.New()

	resp, err := h.Dispatch(context.Background(), s, 1, &protocol.CreateRequest{})
	require.Error(t, err)
	perr, ok := err.(*protocol.Error)
	require.True(t, ok)
	assert.Equal(t, "not logged in", perr.Message)
	assert.Nil(t, resp)
}

func TestDispatchAllowsExemptRequestsPreAuth(t *testing.T) {
	h := &Handlers{registry: registry.New()}
	s := session.New()

	resp, err := h.Dispatch(context.Background(), s, 1, &protocol.PingRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestPublicKeyWithholdsKeyWhenAllowInvitesIsFalse(t *testing.T) {
	reg := registry.New()
	h := &Handlers{registry: reg}

	target := session.New()
	target.Authenticate(1, "Target", 21, []byte("pk-bytes"), false)
	reg.Install(1, "Target", 21, target)

	resp, err := h.PublicKey(context.Background(), session.New(), 1, &protocol.PublicKeyRequest{Name: "Target", World: 21})
	require.NoError(t, err)
	pkResp, ok := resp.(*protocol.PublicKeyResponse)
	require.True(t, ok)
	assert.Nil(t, pkResp.PublicKey)
}

func TestPublicKeyDisclosesKeyWhenAllowInvitesIsTrue(t *testing.T) {
	reg := registry.New()
	h := &Handlers{registry: reg}

	target := session.New()
	target.Authenticate(1, "Target", 21, []byte("pk-bytes"), true)
	reg.Install(1, "Target", 21, target)

	resp, err := h.PublicKey(context.Background(), session.New(), 1, &protocol.PublicKeyRequest{Name: "Target", World: 21})
	require.NoError(t, err)
	pkResp, ok := resp.(*protocol.PublicKeyResponse)
	require.True(t, ok)
	assert.Equal(t, []byte("pk-bytes"), pkResp.PublicKey)
}
