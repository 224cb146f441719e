package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Ping is a liveness check available before authentication (spec §4.3).
func (h *Handlers) Ping(_ context.Context, _ *session.Session, _ uint32, _ *protocol.PingRequest) (any, error) {
	return &protocol.PingResponse{}, nil
}
