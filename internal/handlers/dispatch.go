package handlers

import (
	"context"
	"fmt"

	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
)

// Dispatch routes a decoded request to its handler by concrete type,
// the one place that needs to know every request kind exists. The
// server's connection loop calls this once per inbound frame.
//
// Ping, Version, Register, and Authenticate are the only operations
// reachable before login; every other kind requires an authenticated
// session, matching the original's `if !logged_in => Error("not logged
// in")` dispatch arm (spec §4.2/§4.4). Without this gate an
// unauthenticated caller's Create/Message/Invite/etc. would get
// silence rather than an error, since the handlers themselves just
// no-op when there's no identity to act on.
func (h *Handlers) Dispatch(ctx context.Context, s *session.Session, number uint32, payload any) (any, error) {
	switch payload.(type) {
	case *protocol.PingRequest, *protocol.VersionRequest, *protocol.RegisterRequest, *protocol.AuthenticateRequest:
	default:
		if _, ok := s.Identity(); !ok {
			return nil, protocol.NewError("not logged in")
		}
	}

	switch req := payload.(type) {
	case *protocol.PingRequest:
		return h.Ping(ctx, s, number, req)
	case *protocol.VersionRequest:
		return h.Version(ctx, s, number, req)
	case *protocol.RegisterRequest:
		return h.Register(ctx, s, number, req)
	case *protocol.AuthenticateRequest:
		return h.Authenticate(ctx, s, number, req)
	case *protocol.MessageRequest:
		return h.Message(ctx, s, number, req)
	case *protocol.CreateRequest:
		return h.Create(ctx, s, number, req)
	case *protocol.DisbandRequest:
		return h.Disband(ctx, s, number, req)
	case *protocol.InviteRequest:
		return h.Invite(ctx, s, number, req)
	case *protocol.JoinRequest:
		return h.Join(ctx, s, number, req)
	case *protocol.LeaveRequest:
		return h.Leave(ctx, s, number, req)
	case *protocol.KickRequest:
		return h.Kick(ctx, s, number, req)
	case *protocol.ListRequest:
		return h.List(ctx, s, number, req)
	case *protocol.PromoteRequest:
		return h.Promote(ctx, s, number, req)
	case *protocol.UpdateRequest:
		return h.Update(ctx, s, number, req)
	case *protocol.PublicKeyRequest:
		return h.PublicKey(ctx, s, number, req)
	case *protocol.SecretsRequest:
		return h.Secrets(ctx, s, number, req)
	case *protocol.SendSecretsRequest:
		return h.SendSecrets(ctx, s, number, req)
	case *protocol.AllowInvitesRequest:
		return h.AllowInvites(ctx, s, number, req)
	case *protocol.DeleteAccountRequest:
		return h.DeleteAccount(ctx, s, number, req)
	default:
		return nil, fmt.Errorf("handlers: no dispatch target for %T", payload)
	}
}
