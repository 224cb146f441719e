// Package handlers implements the per-request business logic behind
// every protocol operation (spec §4.3): one function per request kind,
// each taking the caller's session and request payload and returning
// the payload to echo back under the same correlation number (nil for
// operations the original silently drops, such as a stale client with
// no identity yet), or an error to send back as a protocol.Error.
//
// Side effects that fan out to other sessions (member changes,
// messages, invites) are performed directly by the handler rather than
// returned, since they target sessions other than the caller.
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/extrachat/server/internal/db"
	"github.com/extrachat/server/internal/identity"
	"github.com/extrachat/server/internal/metrics"
	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/refresher"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
	"github.com/extrachat/server/internal/worldmap"
)

// Handlers holds every collaborator a request handler might need.
type Handlers struct {
	store     *db.DB
	registry  *registry.Registry
	verifier  identity.Verifier
	refresher *refresher.Refresher
	metrics   *metrics.Metrics
}

// New builds a Handlers bound to the server's shared collaborators.
func New(store *db.DB, reg *registry.Registry, verifier identity.Verifier, ref *refresher.Refresher, m *metrics.Metrics) *Handlers {
	return &Handlers{store: store, registry: reg, verifier: verifier, refresher: ref, metrics: m}
}

// assembleChannel builds the full member-union view of a channel
// (spec §4.6 Channel::get): its name plus every member and invitee,
// with world names resolved to wire ids and liveness checked against
// the Registry.
func (h *Handlers) assembleChannel(ctx context.Context, id [16]byte) (protocol.ChannelPayload, error) {
	row, err := h.store.GetChannel(ctx, id)
	if err != nil {
		return protocol.ChannelPayload{}, err
	}
	if row == nil {
		return protocol.ChannelPayload{}, fmt.Errorf("channel %x does not exist", id)
	}

	members, err := h.store.GetRawMembers(ctx, id)
	if err != nil {
		return protocol.ChannelPayload{}, err
	}
	invited, err := h.store.GetRawInvitedMembers(ctx, id)
	if err != nil {
		return protocol.ChannelPayload{}, err
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

	return protocol.ChannelPayload{ID: id, Name: row.Name, Members: out}, nil
}

// fanout encodes payload once and delivers it, with correlation number
// 0, to every current member and invitee of a channel. A full outbound
// queue drops the delivery and counts it, per spec §5's backpressure
// policy.
func (h *Handlers) fanout(ctx context.Context, channelID [16]byte, payload any) error {
	members, err := h.store.GetRawMembers(ctx, channelID)
	if err != nil {
		return err
	}
	invited, err := h.store.GetRawInvitedMembers(ctx, channelID)
	if err != nil {
		return err
	}

	frame, err := protocol.EncodeResponse(0, payload)
	if err != nil {
		return err
	}

	for _, m := range append(members, invited...) {
		h.deliver(m.LodestoneID, frame)
	}
	return nil
}

// deliver enqueues a pre-encoded frame on one identity's session, if
// it's currently live, counting a drop on a full queue.
func (h *Handlers) deliver(identityID uint64, frame []byte) {
	sess, ok := h.registry.Lookup(identityID)
	if !ok {
		return
	}
	if !sess.Enqueue(frame) {
		h.metrics.FanoutDropped.Inc()
	}
}

// resolveIdentity finds a user's lodestone id by (name, world),
// checking the live Registry first and falling back to the database
// so offline targets can still be named (spec §4.5), matching
// State::get_id in the original.
func (h *Handlers) resolveIdentity(ctx context.Context, name string, world uint16) (uint64, bool, error) {
	if _, id, ok := h.registry.LookupByNameWorld(name, world); ok {
		return id, true, nil
	}

	worldName, ok := worldmap.IDToName(world)
	if !ok {
		return 0, false, nil
	}
	user, err := h.store.GetUserByNameWorld(ctx, name, worldName)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, nil
	}
	return user.LodestoneID, true, nil
}

// rankOrInvite returns a caller's standing in a channel: their stored
// membership rank if they are a member, RankInvited if they only hold
// a pending invite, or ok=false if neither (spec §4.3 Secrets/SendSecrets
// guard), matching ClientState::get_rank_invite.
func (h *Handlers) rankOrInvite(ctx context.Context, channelID [16]byte, identityID uint64) (model.Rank, bool, error) {
	rank, ok, err := h.store.GetMembershipRank(ctx, channelID, identityID)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return rank, true, nil
	}

	_, invited, err := h.store.GetInvite(ctx, channelID, identityID)
	if err != nil {
		return 0, false, err
	}
	if !invited {
		return 0, false, nil
	}
	return model.RankInvited, true, nil
}

// randomChannelID mints a fresh channel id the way Uuid::new_v4 does in
// the original: a random v4 UUID, carried through the wire schema as a
// plain 16-byte array.
func randomChannelID() [16]byte {
	return [16]byte(uuid.New())
}

// requireIdentity is the "if !logged in, do nothing" guard that most
// authenticated operations start with: the original silently returns
// Ok(()) rather than sending any response.
func requireIdentity(s *session.Session) (uint64, bool) {
	return s.Identity()
}
