// Package registry holds the process-wide indices over live sessions:
// identity -> Session, (name, world) -> identity, and pending
// secret-recovery requests, plus the lifetime messages-sent counter.
package registry

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/extrachat/server/internal/session"
)

// SecretsRequest is the pending state for one in-flight Secrets round
// trip: who asked, for which channel, and under what correlation
// number the eventual reply must be sent.
type SecretsRequest struct {
	Requester uint64
	Channel   [16]byte
	Number    uint32
}

func nameWorldKey(name string, world uint16) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(name))
	b.WriteByte('@')
	b.WriteByte(byte(world >> 8))
	b.WriteByte(byte(world))
	return b.String()
}

// Registry is guarded by a single RWMutex. Lookups return sessions so
// callers lock them separately; the one place the Registry lock is held
// while a Session lock is taken is Install, which clears and closes an
// evicted session under the Registry lock so eviction and install are
// one step.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[uint64]*session.Session
	byNameWorld map[string]uint64
	secrets    map[[16]byte]SecretsRequest

	messagesSent atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byIdentity:  make(map[uint64]*session.Session),
		byNameWorld: make(map[string]uint64),
		secrets:     make(map[[16]byte]SecretsRequest),
	}
}

// Lookup returns the live session for an identity, if any.
func (r *Registry) Lookup(identity uint64) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byIdentity[identity]
	return s, ok
}

// Contains reports whether an identity currently has a live session,
// used for Channel::get's online flag (spec §4.6).
func (r *Registry) Contains(identity uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byIdentity[identity]
	return ok
}

// LookupByNameWorld resolves the online-lookup fast path of spec §4.5.
func (r *Registry) LookupByNameWorld(name string, world uint16) (*session.Session, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byNameWorld[nameWorldKey(name, world)]
	if !ok {
		return nil, 0, false
	}
	s, ok := r.byIdentity[identity]
	if !ok {
		return nil, 0, false
	}
	return s, identity, true
}

// Install installs a session under identity and (name, world),
// evicting any prior session for the same identity first: the winner
// clears the loser's identity, sends its shutdown signal, and only
// then takes the map slot (spec §4.2, §9).
func (r *Registry) Install(identity uint64, name string, world uint16, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byIdentity[identity]; ok && prev != s {
		prev.ClearIdentity()
		prev.Close()
	}

	r.byIdentity[identity] = s
	r.byNameWorld[nameWorldKey(name, world)] = identity
}

// Remove removes identity's session from both indices, but only if s
// is still the currently-installed session for that identity. This is
// the no-op half of the eviction protocol: a session evicted by a
// newer login already had its identity cleared, so this call becomes
// a harmless no-op for it.
func (r *Registry) Remove(identity uint64, name string, world uint16, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity == 0 {
		return
	}
	if cur, ok := r.byIdentity[identity]; !ok || cur != s {
		return
	}
	delete(r.byIdentity, identity)
	delete(r.byNameWorld, nameWorldKey(name, world))
}

// PutSecretsRequest records a pending secret-recovery round trip.
func (r *Registry) PutSecretsRequest(id [16]byte, req SecretsRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets[id] = req
}

// TakeSecretsRequest removes and returns a pending request in one step;
// a second take on the same id finds nothing. SendSecrets does not use
// it: it calls PeekSecretsRequest and DeleteSecretsRequest instead.
func (r *Registry) TakeSecretsRequest(id [16]byte) (SecretsRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.secrets[id]
	if ok {
		delete(r.secrets, id)
	}
	return req, ok
}

// PeekSecretsRequest returns a pending request without consuming it,
// so a caller can authorize the reply before the record is removed.
func (r *Registry) PeekSecretsRequest(id [16]byte) (SecretsRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.secrets[id]
	return req, ok
}

// DeleteSecretsRequest removes a pending request once its reply has
// been authorized and accepted.
func (r *Registry) DeleteSecretsRequest(id [16]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.secrets, id)
}

// IncrMessagesSent bumps the lifetime messages-sent counter. It is
// atomic and never touches the Registry lock, per spec §5.
func (r *Registry) IncrMessagesSent() uint64 {
	return r.messagesSent.Add(1)
}

// MessagesSent reads the lifetime messages-sent counter.
func (r *Registry) MessagesSent() uint64 {
	return r.messagesSent.Load()
}

// SessionCount reports how many sessions are currently installed,
// used by the Announce Bus's metrics tick.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity)
}

// ForEach iterates over all installed sessions. fn must not call back
// into the Registry; copy out what's needed and act after iteration
// finishes, consistent with the never-nest-locks rule in spec §5.
func (r *Registry) ForEach(fn func(identity uint64, s *session.Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for identity, s := range r.byIdentity {
		fn(identity, s)
	}
}
