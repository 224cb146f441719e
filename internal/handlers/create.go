package handlers

import (
	"context"

	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Create starts a new linkshell with the caller as its sole Admin
// member (spec §4.3).
func (h *Handlers) Create(ctx context.Context, s *session.Session, _ uint32, req *protocol.CreateRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, nil
	}

	id := randomChannelID()

	if err := h.store.CreateChannel(ctx, id, req.Name); err != nil {
		return nil, err
	}
	if err := h.store.AddMembership(ctx, id, identityID, model.RankAdmin); err != nil {
		return nil, err
	}

	channel, err := h.assembleChannel(ctx, id)
	if err != nil {
		return nil, protocol.NewError("could not get newly-created channel")
	}

	return &protocol.CreateResponse{Channel: channel}, nil
}
