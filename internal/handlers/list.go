package handlers

import (
	"context"
	"fmt"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
	"github.com/extrachat/server/internal/worldmap"
)

// List answers one of four views over the caller's channels (spec
// §4.3): everything at once, the compact per-channel summary, one
// channel's full member roster, or pending invites.
func (h *Handlers) List(ctx context.Context, s *session.Session, _ uint32, req *protocol.ListRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	switch req.ListKind {
	case protocol.ListKindAll:
		channels, err := h.fullChannelList(ctx, identityID, false)
		if err != nil {
			return nil, err
		}
		invites, err := h.fullChannelList(ctx, identityID, true)
		if err != nil {
			return nil, err
		}
		return &protocol.ListResponse{ListKind: protocol.ListKindAll, Channels: channels, Invites: invites}, nil

	case protocol.ListKindChannels:
		simple, err := h.simpleChannelList(ctx, identityID)
		if err != nil {
			return nil, err
		}
		return &protocol.ListResponse{ListKind: protocol.ListKindChannels, Simple: simple}, nil

	case protocol.ListKindInvites:
		simple, err := h.simpleInviteList(ctx, identityID)
		if err != nil {
			return nil, err
		}
		return &protocol.ListResponse{ListKind: protocol.ListKindInvites, Simple: simple}, nil

	case protocol.ListKindMembers:
		if req.Channel == nil {
			return nil, protocol.NewError("members listing requires a channel")
		}
		members, err := h.memberList(ctx, *req.Channel, identityID)
		if err != nil {
			return nil, err
		}
		id := *req.Channel
		return &protocol.ListResponse{ListKind: protocol.ListKindMembers, ID: &id, Members: members}, nil

	default:
		return nil, protocol.NewError(fmt.Sprintf("unrecognized list kind %q", req.ListKind))
	}
}

func (h *Handlers) fullChannelList(ctx context.Context, identityID uint64, invites bool) ([]protocol.ChannelPayload, error) {
	var simple []model.SimpleChannel
	var err error
	if invites {
		simple, err = h.store.ListInviteChannelsForUser(ctx, identityID)
	} else {
		simple, err = h.store.ListSimpleChannelsForUser(ctx, identityID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]protocol.ChannelPayload, 0, len(simple))
	for _, sc := range simple {
		channel, err := h.assembleChannel(ctx, sc.ID)
		if err != nil {
			continue
		}
		out = append(out, channel)
	}
	return out, nil
}

func (h *Handlers) simpleChannelList(ctx context.Context, identityID uint64) ([]protocol.SimpleChannelPayload, error) {
	rows, err := h.store.ListSimpleChannelsForUser(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return toSimplePayloads(rows), nil
}

func (h *Handlers) simpleInviteList(ctx context.Context, identityID uint64) ([]protocol.SimpleChannelPayload, error) {
	rows, err := h.store.ListInviteChannelsForUser(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return toSimplePayloads(rows), nil
}

func toSimplePayloads(rows []model.SimpleChannel) []protocol.SimpleChannelPayload {
	out := make([]protocol.SimpleChannelPayload, 0, len(rows))
	for _, r := range rows {
		out = append(out, protocol.SimpleChannelPayload{ID: r.ID, Name: r.Name, Rank: r.Rank})
	}
	return out
}

// memberList returns a channel's full roster, failing if the caller is
// neither a member nor an invitee (spec §4.3).
func (h *Handlers) memberList(ctx context.Context, channelID [16]byte, identityID uint64) ([]protocol.ChannelMember, error) {
	isParty, err := h.store.IsMemberOrInvitee(ctx, channelID, identityID)
	if err != nil {
		return nil, err
	}
	if !isParty {
		return nil, protocol.NewChannelError(channelID, "user not in channel")
	}

	members, err := h.store.GetRawMembers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	invited, err := h.store.GetRawInvitedMembers(ctx, channelID)
	if err != nil {
		return nil, err
	}

	out := make([]protocol.ChannelMember, 0, len(members)+len(invited))
	for _, m := range append(members, invited...) {
		worldID, ok := worldmap.NameToID(m.World)
		if !ok {
			continue
		}
		out = append(out, protocol.ChannelMember{
			Name:   m.Name,
			World:  worldID,
			Rank:   m.Rank,
			Online: h.registry.Contains(m.LodestoneID),
		})
	}
	return out, nil
}
