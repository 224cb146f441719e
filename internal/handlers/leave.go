package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Leave removes the caller from a channel, whether as a member
// relinquishing their spot or an invitee declining (spec §4.3). An
// Admin sharing the channel with anyone else must promote a successor
// first; the channel's last member leaving deletes it outright instead
// of notifying an empty room.
func (h *Handlers) Leave(ctx context.Context, s *session.Session, _ uint32, req *protocol.LeaveRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	name, world := s.NameWorld()

	rank, found, err := h.rankOrInvite(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, protocol.NewChannelError(req.Channel, "not in that channel")
	}
	isDecline := rank == model.RankInvited

	memberCount, err := h.store.MembershipCount(ctx, req.Channel)
	if err != nil {
		return nil, err
	}

	if memberCount > 1 && rank == model.RankAdmin {
		resp := protocol.LeaveError(req.Channel, "you must promote someone to admin before leaving")
		return &resp, nil
	}

	if memberCount == 1 && !isDecline {
		if err := h.store.DeleteChannel(ctx, req.Channel); err != nil {
			return nil, err
		}
		resp := protocol.LeaveSuccess(req.Channel)
		return &resp, nil
	}

	var kind protocol.MemberChangeKind
	if isDecline {
		if _, err := h.store.DeleteInvite(ctx, req.Channel, identityID); err != nil {
			return nil, err
		}
		kind = protocol.MemberChangeInviteDecline
	} else {
		if err := h.store.RemoveMembership(ctx, req.Channel, identityID); err != nil {
			return nil, err
		}
		kind = protocol.MemberChangeLeave
	}

	if err := h.fanout(ctx, req.Channel, &protocol.MemberChangeResponse{
		Channel: req.Channel, Name: name, World: world, Kind: kind,
	}); err != nil {
		return nil, err
	}

	resp := protocol.LeaveSuccess(req.Channel)
	return &resp, nil
}
