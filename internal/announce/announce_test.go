package announce

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/extrachat/server/internal/metrics"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

func TestAnnounceEnqueuesToEverySession(t *testing.T) {
	reg := registry.New()
	m := metrics.New(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := New(reg, m, log)

	a := session.New()
	b := session.New()
	reg.Install(1, "A", 21, a)
	reg.Install(2, "B", 21, b)

	bus.Announce("server restarting soon")

	for _, s := range []*session.Session{a, b} {
		select {
		case frame := <-s.Outbound:
			assert.Contains(t, string(frame), "server restarting soon")
		default:
			t.Fatal("expected an announcement frame")
		}
	}
}

func TestRunMetricsTickStopsOnCancel(t *testing.T) {
	reg := registry.New()
	m := metrics.New(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := New(reg, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bus.RunMetricsTick(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunMetricsTick did not return after cancellation")
	}
}
