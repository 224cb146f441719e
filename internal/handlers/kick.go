package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Kick removes a member or invitee from a channel (spec §4.3). The
// caller needs at least Moderator rank and cannot act on a peer of
// equal or higher rank; targets may be offline, unlike Invite.
func (h *Handlers) Kick(ctx context.Context, s *session.Session, _ uint32, req *protocol.KickRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	callerName, callerWorld := s.NameWorld()

	callerRank, isMember, err := h.store.GetMembershipRank(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !isMember || callerRank < model.RankModerator {
		return nil, protocol.NewChannelError(req.Channel, "not in channel/not enough permissions")
	}

	targetID, found, err := h.resolveIdentity(ctx, req.Name, req.World)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, protocol.NewChannelError(req.Channel, "user not found")
	}

	targetRank, targetIsMember, err := h.store.GetMembershipRank(ctx, req.Channel, targetID)
	if err != nil {
		return nil, err
	}
	if targetIsMember {
		if targetRank >= callerRank {
			return nil, protocol.NewChannelError(req.Channel, "cannot kick someone of equal or higher rank")
		}
	} else {
		if _, invited, err := h.store.GetInvite(ctx, req.Channel, targetID); err != nil {
			return nil, err
		} else if !invited {
			return nil, protocol.NewChannelError(req.Channel, "user not in channel")
		}
	}

	var kind protocol.MemberChangeKind
	resp := &protocol.MemberChangeResponse{Channel: req.Channel, Name: req.Name, World: req.World}
	if targetIsMember {
		kind = protocol.MemberChangeKick
		resp.Kicker = callerName
		resp.KickerWorld = callerWorld
	} else {
		kind = protocol.MemberChangeInviteCancel
		resp.Canceler = callerName
		resp.CancelerWorld = callerWorld
	}
	resp.Kind = kind

	if err := h.fanout(ctx, req.Channel, resp); err != nil {
		return nil, err
	}

	if targetIsMember {
		if err := h.store.RemoveMembership(ctx, req.Channel, targetID); err != nil {
			return nil, err
		}
	} else {
		if _, err := h.store.DeleteInvite(ctx, req.Channel, targetID); err != nil {
			return nil, err
		}
	}

	return &protocol.KickResponse{Channel: req.Channel, Name: req.Name, World: req.World}, nil
}
