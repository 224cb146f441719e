package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Join accepts a pending invite, atomically consuming it before
// granting Member rank (spec §4.3). A missing invite — already used,
// cancelled, or never issued — is the only failure mode.
func (h *Handlers) Join(ctx context.Context, s *session.Session, _ uint32, req *protocol.JoinRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	name, world := s.NameWorld()

	existed, err := h.store.DeleteInvite(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, protocol.NewChannelError(req.Channel, "you were not invited to that channel")
	}

	if err := h.fanout(ctx, req.Channel, &protocol.MemberChangeResponse{
		Channel: req.Channel, Name: name, World: world, Kind: protocol.MemberChangeJoin,
	}); err != nil {
		return nil, err
	}

	if err := h.store.AddMembership(ctx, req.Channel, identityID, model.RankMember); err != nil {
		return nil, err
	}

	channel, err := h.assembleChannel(ctx, req.Channel)
	if err != nil {
		return nil, err
	}

	return &protocol.JoinResponse{Channel: channel}, nil
}
