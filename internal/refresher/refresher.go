// Package refresher runs the Background Refresher (spec §2 C7): an
// inbox of identities whose cached name/world should be refreshed
// against the Identity Verifier, rate-limited to one call every five
// seconds. Grounded on original_source/server/src/updater.rs.
package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/extrachat/server/internal/db"
	"github.com/extrachat/server/internal/identity"
)

const waitTime = 5 * time.Second

// inboxSize bounds the refresh inbox; once it is full, Enqueue drops
// further requests rather than blocking Authenticate or growing without
// limit.
const inboxSize = 256

// Refresher serializes identity refreshes through a single inbox
// goroutine, matching spec §9's resolved "inbox, not periodic sweep"
// open question.
type Refresher struct {
	inbox    chan uint64
	store    *db.DB
	verifier identity.Verifier
	log      *slog.Logger
}

// New builds a Refresher. Run must be started in its own goroutine.
func New(store *db.DB, verifier identity.Verifier, log *slog.Logger) *Refresher {
	return &Refresher{
		inbox:    make(chan uint64, inboxSize),
		store:    store,
		verifier: verifier,
		log:      log,
	}
}

// Enqueue posts a refresh request. It never blocks: a full inbox
// drops the request, since a refresh is always superseded by the next
// authentication's own "older than 2 hours" check (spec §4.2).
func (r *Refresher) Enqueue(lodestoneID uint64) {
	select {
	case r.inbox <- lodestoneID:
	default:
		r.log.Warn("refresher inbox full, dropping refresh request", "lodestone_id", lodestoneID)
	}
}

// Run drains the inbox until ctx is cancelled, spacing external calls
// by at least waitTime.
func (r *Refresher) Run(ctx context.Context) {
	lastUpdate := time.Now().Add(-waitTime)

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.inbox:
			if elapsed := time.Since(lastUpdate); elapsed < waitTime {
				select {
				case <-time.After(waitTime - elapsed):
				case <-ctx.Done():
					return
				}
			}

			if err := r.update(ctx, id); err != nil {
				r.log.Error("refresh failed", "lodestone_id", id, "error", err)
			} else {
				r.log.Debug("refreshed user", "lodestone_id", id)
			}
			lastUpdate = time.Now()
		}
	}
}

func (r *Refresher) update(ctx context.Context, lodestoneID uint64) error {
	profile, err := r.verifier.Character(ctx, lodestoneID)
	if err != nil {
		return err
	}
	return r.store.UpdateUserProfile(ctx, lodestoneID, profile.Name, profile.World, time.Now().Unix())
}
