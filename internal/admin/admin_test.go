package admin

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrachat/server/internal/announce"
	"github.com/extrachat/server/internal/logging"
	"github.com/extrachat/server/internal/metrics"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/session"
)

func newTestBus(t *testing.T) (*announce.Bus, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	m := metrics.New(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return announce.New(reg, m, log), reg
}

func TestConsoleAnnounceFansOutToSessions(t *testing.T) {
	bus, reg := newTestBus(t)
	s := session.New()
	reg.Install(1, "Name", 21, s)

	var logBuf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logBuf, nil))

	cancelled := false
	c := New(strings.NewReader("announce server restarting soon\nquit\n"), bus, log, func() { cancelled = true })
	c.Run()

	assert.True(t, cancelled)

	select {
	case frame := <-s.Outbound:
		assert.NotEmpty(t, frame)
	default:
		t.Fatal("expected an announcement frame to be enqueued")
	}
}

func TestConsoleQuitCallsCancel(t *testing.T) {
	bus, _ := newTestBus(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cancelled := false
	c := New(strings.NewReader("quit\n"), bus, log, func() { cancelled = true })
	c.Run()

	assert.True(t, cancelled)
}

func TestConsoleEOFCallsCancel(t *testing.T) {
	bus, _ := newTestBus(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cancelled := false
	c := New(strings.NewReader(""), bus, log, func() { cancelled = true })
	c.Run()

	assert.True(t, cancelled)
}

func TestConsoleLogLevelCommand(t *testing.T) {
	bus, _ := newTestBus(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	prev := logging.Level.Level()
	defer logging.Level.Set(prev)
	logging.Level.Set(slog.LevelWarn)

	c := New(strings.NewReader("log debug\nquit\n"), bus, log, func() {})
	c.Run()

	assert.Equal(t, slog.LevelDebug, logging.Level.Level())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		lvl, ok := parseLevel(in)
		require.True(t, ok, in)
		assert.Equal(t, want, lvl)
	}

	_, ok := parseLevel("nonsense")
	assert.False(t, ok)
}
