package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// PublicKey resolves a named online user's current public key (spec
// §4.3), used to seed the pairwise key exchange before Invite or
// Secrets. The key is withheld whenever the target isn't online or
// has turned off allow_invites (spec §8: that flag must also gate
// disclosure here, not just Invite).
func (h *Handlers) PublicKey(_ context.Context, _ *session.Session, _ uint32, req *protocol.PublicKeyRequest) (any, error) {
	targetSession, _, found := h.registry.LookupByNameWorld(req.Name, req.World)
	if !found || !targetSession.AllowInvites() {
		return &protocol.PublicKeyResponse{Name: req.Name, World: req.World}, nil
	}
	return &protocol.PublicKeyResponse{Name: req.Name, World: req.World, PublicKey: targetSession.PublicKey()}, nil
}
