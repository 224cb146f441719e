package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/extrachat/server/internal/apikey"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
	"github.com/extrachat/server/internal/worldmap"
)

// refreshAfter is how stale a cached profile must be before
// Authenticate kicks off a Background Refresher pass (spec §4.2).
const refreshAfter = 2 * time.Hour

// errStr builds the inline *string the wire schema wants for
// AuthenticateResponse.Error.
func errStr(s string) *string { return &s }

// Authenticate exchanges an API key for a live session (spec §4.2):
// evicting any prior session for the same identity, installing this
// one into the Registry, and queuing a profile refresh if the cached
// name/world is stale.
func (h *Handlers) Authenticate(ctx context.Context, s *session.Session, _ uint32, req *protocol.AuthenticateRequest) (any, error) {
	if _, ok := s.Identity(); ok {
		return &protocol.AuthenticateResponse{Error: errStr("already logged in")}, nil
	}

	shortToken, longHash, err := apikey.Parse(req.Key)
	if err != nil {
		return &protocol.AuthenticateResponse{Error: errStr("could not parse key")}, nil
	}

	user, err := h.store.GetUserByKey(ctx, shortToken, longHash)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &protocol.AuthenticateResponse{Error: errStr("invalid key")}, nil
	}

	worldID, ok := worldmap.NameToID(user.World)
	if !ok {
		return nil, fmt.Errorf("user %d has invalid world %q in the database", user.LodestoneID, user.World)
	}

	s.Authenticate(user.LodestoneID, user.Name, worldID, req.PublicKey, req.AllowInvites)
	h.registry.Install(user.LodestoneID, user.Name, worldID, s)

	if time.Since(time.Unix(user.LastUpdated, 0)) >= refreshAfter {
		h.refresher.Enqueue(user.LodestoneID)
	}

	return &protocol.AuthenticateResponse{}, nil
}
