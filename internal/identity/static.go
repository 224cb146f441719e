package identity

import (
	"context"
	"fmt"
	"sync"
)

// Static is an in-memory Verifier double. The real profile scrape
// against Lodestone is explicitly out of scope (spec §1); this is the
// collaborator the binary wires in so Register and the Background
// Refresher have something to call against, and the fixture a real
// scraper implementation would eventually replace.
type Static struct {
	mu       sync.RWMutex
	byWorld  map[string][]CharacterResult
	profiles map[uint64]CharacterProfile
}

// NewStatic returns an empty double with no seeded characters.
func NewStatic() *Static {
	return &Static{
		byWorld:  make(map[string][]CharacterResult),
		profiles: make(map[uint64]CharacterProfile),
	}
}

// Seed registers a character as findable by CharacterSearch and
// fetchable by Character, for operators running without a real
// scraper wired in.
func (s *Static) Seed(result CharacterResult, profileText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWorld[result.World] = append(s.byWorld[result.World], result)
	s.profiles[result.LodestoneID] = CharacterProfile{
		Name:        result.Name,
		World:       result.World,
		ProfileText: profileText,
	}
}

// SetProfileText overwrites a seeded character's profile text, used to
// simulate a player having pasted the verification challenge.
func (s *Static) SetProfileText(lodestoneID uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[lodestoneID]
	if !ok {
		return
	}
	p.ProfileText = text
	s.profiles[lodestoneID] = p
}

// CharacterSearch returns every seeded character on world whose name
// was seeded, as a single page.
func (s *Static) CharacterSearch(_ context.Context, name, world string, page int) ([]CharacterResult, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if page != 1 {
		return nil, 1, nil
	}

	var out []CharacterResult
	for _, c := range s.byWorld[world] {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, 1, nil
}

// Character returns the seeded profile for lodestoneID.
func (s *Static) Character(_ context.Context, lodestoneID uint64) (CharacterProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[lodestoneID]
	if !ok {
		return CharacterProfile{}, fmt.Errorf("identity: no seeded character %d", lodestoneID)
	}
	return p, nil
}
