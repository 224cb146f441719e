package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// SendSecrets delivers one peer's reply to a pending Secrets request
// (spec §4.3). Taking the request is destructive: whichever reply
// arrives first wins, and every later reply to the same request_id
// finds nothing left to deliver.
func (h *Handlers) SendSecrets(ctx context.Context, s *session.Session, _ uint32, req *protocol.SendSecretsRequest) (any, error) {
	if len(req.EncryptedSharedSecret) == 0 {
		return nil, nil
	}

	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	pending, ok := h.registry.PeekSecretsRequest(req.RequestID)
	if !ok {
		return nil, nil
	}

	if _, found, err := h.rankOrInvite(ctx, pending.Channel, identityID); err != nil {
		return nil, err
	} else if !found {
		return nil, protocol.NewChannelError(pending.Channel, "not in that channel")
	}

	h.registry.DeleteSecretsRequest(req.RequestID)

	frame, err := protocol.EncodeResponse(pending.Number, &protocol.SecretsResponse{
		Channel:               pending.Channel,
		PublicKey:             s.PublicKey(),
		EncryptedSharedSecret: req.EncryptedSharedSecret,
	})
	if err != nil {
		return nil, err
	}
	h.deliver(pending.Requester, frame)

	return nil, nil
}
