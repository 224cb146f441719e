package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Version checks the client's protocol version. Other operations do
// not require a prior Version call. A mismatched version is a
// protocol.Error, which the server's dispatch loop treats as reason to
// close the connection right after sending it.
func (h *Handlers) Version(_ context.Context, _ *session.Session, _ uint32, req *protocol.VersionRequest) (any, error) {
	if req.Version != protocol.ProtocolVersion {
		return nil, protocol.NewError("unsupported version")
	}
	return &protocol.VersionResponse{Version: protocol.ProtocolVersion}, nil
}
