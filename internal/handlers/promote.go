package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Promote changes a member's rank (spec §4.3). Only the channel's
// Admin may do this, and promoting someone else to Admin swaps ranks
// rather than creating a second Admin: the caller drops to Moderator.
func (h *Handlers) Promote(ctx context.Context, s *session.Session, _ uint32, req *protocol.PromoteRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	callerName, callerWorld := s.NameWorld()

	callerRank, isMember, err := h.store.GetMembershipRank(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !isMember || callerRank != model.RankAdmin {
		return nil, protocol.NewChannelError(req.Channel, "not in channel/not enough permissions")
	}

	if req.Rank == model.RankInvited {
		return nil, protocol.NewChannelError(req.Channel, "cannot change rank to invited")
	}

	targetID, found, err := h.resolveIdentity(ctx, req.Name, req.World)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, protocol.NewChannelError(req.Channel, "user not found")
	}
	if targetID == identityID {
		return nil, protocol.NewChannelError(req.Channel, "cannot change own rank")
	}

	targetRank, targetIsMember, err := h.store.GetMembershipRank(ctx, req.Channel, targetID)
	if err != nil {
		return nil, err
	}
	if !targetIsMember {
		return nil, protocol.NewChannelError(req.Channel, "user not in channel")
	}
	if targetRank >= callerRank {
		return nil, protocol.NewChannelError(req.Channel, "cannot change rank of someone of equal or higher rank")
	}

	swap := req.Rank == model.RankAdmin

	if err := h.store.UpdateMembershipRank(ctx, req.Channel, targetID, req.Rank); err != nil {
		return nil, err
	}

	if swap {
		if err := h.store.UpdateMembershipRank(ctx, req.Channel, identityID, model.RankModerator); err != nil {
			return nil, err
		}
		if err := h.fanout(ctx, req.Channel, &protocol.MemberChangeResponse{
			Channel: req.Channel,
			Name:    callerName,
			World:   callerWorld,
			Kind:    protocol.MemberChangePromote,
			Rank:    model.RankModerator,
		}); err != nil {
			return nil, err
		}
	}

	if err := h.fanout(ctx, req.Channel, &protocol.MemberChangeResponse{
		Channel: req.Channel,
		Name:    req.Name,
		World:   req.World,
		Kind:    protocol.MemberChangePromote,
		Rank:    req.Rank,
	}); err != nil {
		return nil, err
	}

	return &protocol.PromoteResponse{Channel: req.Channel, Name: req.Name, World: req.World, Rank: req.Rank}, nil
}
