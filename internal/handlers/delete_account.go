package handlers

import (
	"context"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// DeleteAccount permanently removes the caller's account (spec §4.3).
// It refuses while the caller still belongs to any channel, so Leave
// and Disband always run first and member lists never go stale out
// from under a channel.
func (h *Handlers) DeleteAccount(ctx context.Context, s *session.Session, _ uint32, _ *protocol.DeleteAccountRequest) (any, error) {
	identityID, ok := requireIdentity(s)
	if !ok {
		return nil, protocol.NewError("no identity on this session, this is a bug")
	}

	count, err := h.store.UserChannelCount(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, protocol.NewError("leave all linkshells first")
	}

	if err := h.store.DeleteUser(ctx, identityID); err != nil {
		return nil, err
	}

	return &protocol.DeleteAccountResponse{}, nil
}
