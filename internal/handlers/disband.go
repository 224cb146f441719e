package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Disband deletes a channel outright. Only its Admin may do so (spec
// §4.3); every member and invitee is notified before the row is
// removed.
func (h *Handlers) Disband(ctx context.Context, s *session.Session, _ uint32, req *protocol.DisbandRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	rank, isMember, err := h.store.GetMembershipRank(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !isMember || rank != model.RankAdmin {
		return nil, protocol.NewChannelError(req.Channel, "not in channel/not enough permissions")
	}

	if err := h.fanout(ctx, req.Channel, &protocol.DisbandResponse{Channel: req.Channel}); err != nil {
		return nil, err
	}

	if err := h.store.DeleteChannel(ctx, req.Channel); err != nil {
		return nil, err
	}

	return &protocol.DisbandResponse{Channel: req.Channel}, nil
}
