package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Message fans an encrypted payload out to a channel's current members
// (spec §4.3). It never replies to the sender directly — the original
// only ever broadcasts — and it never decrypts or inspects the
// ciphertext (spec §1 Non-goal: message content is opaque to the
// server).
func (h *Handlers) Message(ctx context.Context, s *session.Session, _ uint32, req *protocol.MessageRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}
	name, world := s.NameWorld()

	members, err := h.store.GetRawMembers(ctx, req.Channel)
	if err != nil {
		return nil, err
	}

	inChannel := false
	for _, m := range members {
		if m.LodestoneID == identityID {
			inChannel = true
			break
		}
	}
	if !inChannel {
		return nil, protocol.NewChannelError(req.Channel, "not in channel")
	}

	h.registry.IncrMessagesSent()

	frame, err := protocol.EncodeResponse(0, &protocol.MessageResponse{
		Channel: req.Channel, Sender: name, World: world, Message: req.Message,
	})
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.LodestoneID == identityID {
			continue
		}
		h.deliver(m.LodestoneID, frame)
	}

	return nil, nil
}
