package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Update changes a channel's mutable metadata — currently just its
// opaque name (spec §4.3) — and notifies every member and invitee of
// the new value.
func (h *Handlers) Update(ctx context.Context, s *session.Session, _ uint32, req *protocol.UpdateRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	rank, isMember, err := h.store.GetMembershipRank(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !isMember || rank != model.RankAdmin {
		return nil, protocol.NewChannelError(req.Channel, "not in that channel")
	}

	switch req.Kind {
	case protocol.UpdateKindName:
		if err := h.store.UpdateChannelName(ctx, req.Channel, req.Name); err != nil {
			return nil, err
		}
	default:
		return nil, protocol.NewChannelError(req.Channel, "unrecognized update kind")
	}

	if err := h.fanout(ctx, req.Channel, &protocol.UpdatedResponse{
		Channel: req.Channel, Kind: req.Kind, Name: req.Name,
	}); err != nil {
		return nil, err
	}

	return &protocol.UpdateResponse{Channel: req.Channel}, nil
}
