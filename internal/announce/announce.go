// Package announce implements the Announce Bus (spec §2 C8): operator
// broadcasts fanned out to every live session, plus a 60-second
// metrics tick that logs a summary line and updates Prometheus gauges.
// Grounded on original_source/server/src/main.rs's announce() method
// and its 60-second metrics-tick task.
package announce

import (
	"context"
	"log/slog"
	"time"

	"github.com/extrachat/server/internal/metrics"
	"github.com/extrachat/server/internal/protocol"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

const tickInterval = 60 * time.Second

// Bus fans out operator announcements and runs the periodic metrics
// tick.
type Bus struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// New builds a Bus over the given Registry.
func New(reg *registry.Registry, m *metrics.Metrics, log *slog.Logger) *Bus {
	return &Bus{registry: reg, metrics: m, log: log}
}

// Announce fans out an Announce envelope with number 0 to every live
// session, matching State::announce in the original.
func (b *Bus) Announce(msg string) {
	frame, err := protocol.EncodeResponse(0, &protocol.AnnounceResponse{Announcement: msg})
	if err != nil {
		b.log.Error("encoding announcement", "error", err)
		return
	}

	b.registry.ForEach(func(_ uint64, s *session.Session) {
		s.Enqueue(frame)
	})
}

// RunMetricsTick runs until ctx is cancelled, logging a summary line
// and updating gauges every 60 seconds.
func (b *Bus) RunMetricsTick(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var lastMessages uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			messages := b.registry.MessagesSent()
			diff := messages - lastMessages
			lastMessages = messages
			sessions := b.registry.SessionCount()

			b.metrics.SessionsOnline.Set(float64(sessions))
			b.metrics.MessagesSent.Add(float64(diff))

			b.log.Info("metrics tick", "sessions", sessions, "messages_sent", messages, "messages_sent_delta", diff)
		}
	}
}
