package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

const inviteNotOnline = "user not online"

// Invite sends a channel invitation to a currently online user (spec
// §4.3). The Member-Change fan-out is sent before the invite row is
// written, matching the original's ordering — late subscribers to the
// channel's state stream never see a "ghost" invite that predates the
// notification.
func (h *Handlers) Invite(ctx context.Context, s *session.Session, _ uint32, req *protocol.InviteRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	callerName, callerWorld := s.NameWorld()

	rank, isMember, err := h.store.GetMembershipRank(ctx, req.Channel, identityID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, protocol.NewChannelError(req.Channel, "not in channel")
	}
	if rank < model.RankModerator {
		return nil, protocol.NewChannelError(req.Channel, "not enough permissions to invite")
	}

	targetSession, targetID, found := h.registry.LookupByNameWorld(req.Name, req.World)
	if !found {
		return nil, protocol.NewChannelError(req.Channel, inviteNotOnline)
	}
	if !targetSession.AllowInvites() {
		return nil, protocol.NewChannelError(req.Channel, inviteNotOnline)
	}
	if targetID == identityID {
		return nil, protocol.NewChannelError(req.Channel, "cannot invite self")
	}

	if _, already, err := h.store.GetMembershipRank(ctx, req.Channel, targetID); err != nil {
		return nil, err
	} else if already {
		return nil, protocol.NewChannelError(req.Channel, "already in channel")
	}
	if _, already, err := h.store.GetInvite(ctx, req.Channel, targetID); err != nil {
		return nil, err
	} else if already {
		return nil, protocol.NewChannelError(req.Channel, "already invited")
	}

	if err := h.fanout(ctx, req.Channel, &protocol.MemberChangeResponse{
		Channel:      req.Channel,
		Name:         req.Name,
		World:        req.World,
		Kind:         protocol.MemberChangeInvite,
		Inviter:      callerName,
		InviterWorld: callerWorld,
	}); err != nil {
		return nil, err
	}

	if err := h.store.AddInvite(ctx, req.Channel, targetID, identityID); err != nil {
		return nil, err
	}

	channel, err := h.assembleChannel(ctx, req.Channel)
	if err != nil {
		return nil, err
	}

	frame, err := protocol.EncodeResponse(0, &protocol.InvitedResponse{
		Channel:         channel,
		Name:            callerName,
		World:           callerWorld,
		PublicKey:       s.PublicKey(),
		EncryptedSecret: req.EncryptedSecret,
	})
	if err != nil {
		return nil, err
	}
	h.deliver(targetID, frame)

	return &protocol.InviteResponse{Channel: req.Channel, Name: req.Name, World: req.World}, nil
}
