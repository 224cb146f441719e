package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/extrachat/server/internal/apikey"
	"github.com/extrachat/server/internal/model"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/session"
	"github.com/extrachat/server/internal/worldmap"
)

// challengeTTL is how long a generated challenge stays valid before a
// retried Register call is issued a fresh one.
const challengeTTL = 5 * time.Minute

// Register runs the three-step registration flow of spec §4.3: resolve
// the named character through the Identity Verifier, hand back a
// profile-text challenge until the caller claims to have posted it,
// then verify and mint an API key. It never requires s to already be
// authenticated.
func (h *Handlers) Register(ctx context.Context, _ *session.Session, _ uint32, req *protocol.RegisterRequest) (any, error) {
	worldName, ok := worldmap.IDToName(req.World)
	if !ok {
		return nil, protocol.NewError("invalid world id")
	}

	character, err := h.findCharacter(ctx, req.Name, worldName)
	if err != nil {
		return nil, fmt.Errorf("searching for character: %w", err)
	}
	if character == nil {
		return nil, protocol.NewError("could not find character")
	}

	verification, err := h.store.GetVerification(ctx, character.LodestoneID)
	if err != nil {
		return nil, err
	}

	if !req.ChallengeCompleted || verification == nil || time.Since(time.Unix(verification.CreatedAt, 0)) > challengeTTL {
		challenge, err := h.issueChallenge(ctx, character.LodestoneID, verification)
		if err != nil {
			return nil, err
		}
		return &protocol.RegisterResponse{RegisterKind: protocol.RegisterKindChallenge, Challenge: challenge}, nil
	}

	profile, err := h.verifier.Character(ctx, character.LodestoneID)
	if err != nil {
		return nil, fmt.Errorf("fetching character profile: %w", err)
	}
	if !strings.Contains(profile.ProfileText, verification.Challenge) {
		return &protocol.RegisterResponse{RegisterKind: protocol.RegisterKindFailure}, nil
	}

	if err := h.store.DeleteVerification(ctx, character.LodestoneID); err != nil {
		return nil, err
	}

	key, err := apikey.Generate()
	if err != nil {
		return nil, err
	}

	if err := h.store.UpsertUser(ctx, model.User{
		LodestoneID: character.LodestoneID,
		Name:        character.Name,
		World:       character.World,
		KeyShort:    key.ShortToken,
		KeyHash:     key.Hash(),
		LastUpdated: time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	return &protocol.RegisterResponse{RegisterKind: protocol.RegisterKindSuccess, Key: key.String()}, nil
}

// findCharacter pages through character_search results looking for an
// exact (name, world) match, stopping once the Verifier runs out of
// pages.
func (h *Handlers) findCharacter(ctx context.Context, name, world string) (*resultMatch, error) {
	page := 1
	for {
		results, totalPages, err := h.verifier.CharacterSearch(ctx, name, world, page)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.Name == name && r.World == world {
				return &resultMatch{LodestoneID: r.LodestoneID, Name: r.Name, World: r.World}, nil
			}
		}
		page++
		if page > totalPages {
			return nil, nil
		}
	}
}

type resultMatch struct {
	LodestoneID uint64
	Name        string
	World       string
}

// issueChallenge returns the active challenge for an identity,
// generating and persisting a new one if none exists or the previous
// one is older than challengeTTL (spec §4.3 Open Question: regenerate
// rather than error on a stale retry).
func (h *Handlers) issueChallenge(ctx context.Context, lodestoneID uint64, existing *model.Verification) (string, error) {
	generate := existing == nil || time.Since(time.Unix(existing.CreatedAt, 0)) > challengeTTL
	if !generate {
		return existing.Challenge, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating challenge: %w", err)
	}
	challenge := hex.EncodeToString(raw)

	if err := h.store.UpsertVerification(ctx, lodestoneID, challenge, time.Now().Unix()); err != nil {
		return "", err
	}
	return challenge, nil
}
