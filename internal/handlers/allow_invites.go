package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// AllowInvites toggles whether other users may invite the caller to a
// channel (spec §4.3). It only touches session state, not the database.
func (h *Handlers) AllowInvites(_ context.Context, s *session.Session, _ uint32, req *protocol.AllowInvitesRequest) (any, error) {
	allowed := s.SetAllowInvites(req.Allowed)
	return &protocol.AllowInvitesResponse{Allowed: allowed}, nil
}
