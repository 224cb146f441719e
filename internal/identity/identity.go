// Package identity defines the external profile-verifier collaborator
// (spec §6.6). The server never implements the scrape itself — that's
// explicitly out of scope (spec §1) — it only depends on this
// interface, which handlers/register.go and the Background Refresher
// call against.
package identity

import "context"

// CharacterResult is one hit from a character_search page.
type CharacterResult struct {
	LodestoneID uint64
	Name        string
	World       string
}

// CharacterProfile is the full profile page for one identity.
type CharacterProfile struct {
	Name        string
	World       string
	ProfileText string
}

// Verifier is the collaborator interface of spec §6.6.
type Verifier interface {
	// CharacterSearch returns one page of search results plus the
	// total page count, for Register's pagination loop.
	CharacterSearch(ctx context.Context, name, world string, page int) (results []CharacterResult, totalPages int, err error)

	// Character fetches a single profile by its Lodestone id.
	Character(ctx context.Context, lodestoneID uint64) (CharacterProfile, error)
}
