package handlers

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

// Secrets kicks off the shared-secret recovery round trip of spec
// §4.3: rather than asking every online member (needless chatter), it
// samples roughly 10% of them (at least one) and asks those to send
// their copy of the shared secret back. The first SendSecrets reply
// wins; everyone else's response lands on a request that's already
// been consumed (spec §4.3 SendSecrets, §8).
func (h *Handlers) Secrets(ctx context.Context, s *session.Session, number uint32, req *protocol.SecretsRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	if _, found, err := h.rankOrInvite(ctx, req.Channel, identityID); err != nil {
		return nil, err
	} else if !found {
		return nil, protocol.NewChannelError(req.Channel, "not in that channel")
	}

	members, err := h.store.GetRawMembers(ctx, req.Channel)
	if err != nil {
		return nil, err
	}
	invited, err := h.store.GetRawInvitedMembers(ctx, req.Channel)
	if err != nil {
		return nil, err
	}

	var onlinePeers []uint64
	for _, m := range append(members, invited...) {
		if m.LodestoneID == identityID {
			continue
		}
		if h.registry.Contains(m.LodestoneID) {
			onlinePeers = append(onlinePeers, m.LodestoneID)
		}
	}
	if len(onlinePeers) == 0 {
		return nil, protocol.NewChannelError(req.Channel, "no other online members")
	}

	// Ask roughly 10% of the online peers, matching the original's
	// "ask 10%, take the first reply" sampling.
	amount := int(math.Round(float64(len(onlinePeers)) / 10))
	if amount == 0 {
		amount = 1
	}
	rand.Shuffle(len(onlinePeers), func(i, j int) { onlinePeers[i], onlinePeers[j] = onlinePeers[j], onlinePeers[i] })
	if amount > len(onlinePeers) {
		amount = len(onlinePeers)
	}
	chosen := onlinePeers[:amount]

	requestID := [16]byte(uuid.New())
	h.registry.PutSecretsRequest(requestID, registry.SecretsRequest{
		Requester: identityID,
		Channel:   req.Channel,
		Number:    number,
	})

	frame, err := protocol.EncodeResponse(0, &protocol.SendSecretsResponse{
		Channel:   req.Channel,
		RequestID: requestID,
		PublicKey: s.PublicKey(),
	})
	if err != nil {
		return nil, err
	}
	for _, peer := range chosen {
		h.deliver(peer, frame)
	}

	return nil, nil
}
