// Package session holds the per-connection state machine: its current
// authentication state, outbound queue, and shutdown signal. One
// Session is owned by exactly one connection task for its lifetime.
package session

import (
	"sync"
)

// State is one of the three positions in spec §4.2's state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// outboundQueueSize is the bound on each session's outbound queue
// (spec §3, §5): fan-out is best-effort and drops on a full queue
// rather than blocking the sender.
const outboundQueueSize = 10

// Session is the per-connection state. Fields guarded by mu are not
// read or written while holding a Registry lock, except by
// Registry.Install when it evicts a prior session; callers copy out
// what they need and release promptly.
type Session struct {
	Outbound chan []byte
	Shutdown chan struct{}

	closeOnce sync.Once

	mu           sync.RWMutex
	state        State
	identity     uint64 // lodestone id, valid only when state == Authenticated
	name         string
	world        uint16
	publicKey    []byte
	allowInvites bool
}

// New creates a fresh Unauthenticated session with its queues ready.
func New() *Session {
	return &Session{
		Outbound: make(chan []byte, outboundQueueSize),
		Shutdown: make(chan struct{}),
		state:    StateUnauthenticated,
	}
}

// State returns the current state under a brief read lock.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the authenticated identity and whether one is set.
func (s *Session) Identity() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.state == StateAuthenticated && s.identity != 0
}

// NameWorld returns the cached (name, world) pair installed at
// authentication, used as the Registry's secondary index key.
func (s *Session) NameWorld() (string, uint16) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name, s.world
}

// PublicKey returns the session's current public key bytes.
func (s *Session) PublicKey() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publicKey
}

// SetPublicKey updates the public key, e.g. on re-authentication.
func (s *Session) SetPublicKey(pk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicKey = pk
}

// AllowInvites returns the current allow-invites flag.
func (s *Session) AllowInvites() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowInvites
}

// SetAllowInvites updates the allow-invites flag and returns it.
func (s *Session) SetAllowInvites(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowInvites = v
	return s.allowInvites
}

// Authenticate installs the identity, name/world, public key, and
// allow_invites flag, and transitions to Authenticated. Callers must
// already have performed Registry eviction/install; this only updates
// local state.
func (s *Session) Authenticate(identity uint64, name string, world uint16, pk []byte, allowInvites bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.name = name
	s.world = world
	s.publicKey = pk
	s.allowInvites = allowInvites
	s.state = StateAuthenticated
}

// ClearIdentity zeroes the identity field without changing state. This
// is the "winner clears loser's identity before installing" step of
// spec §4.2/§9: it makes the loser's eventual cleanup path a no-op on
// the Registry.
func (s *Session) ClearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = 0
}

// Close transitions the session to Closed and fires Shutdown exactly
// once. Safe to call multiple times and from multiple goroutines.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		close(s.Shutdown)
	})
}

// Enqueue performs a non-blocking send on the outbound queue. It
// returns false if the queue was full, in which case the caller
// silently drops the message per spec §5's backpressure policy.
func (s *Session) Enqueue(frame []byte) bool {
	select {
	case s.Outbound <- frame:
		return true
	default:
		return false
	}
}
