// Package admin implements the stdin command loop (spec §2 C9, §6.5):
// quit/exit, announce <msg>, log|level <level>. Grounded on
// original_source/server/src/main.rs's admin stdin thread, adapted
// from rustyline's line editor to a bufio.Scanner loop.
package admin

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/extrachat/server/internal/announce"
	"github.com/extrachat/server/internal/logging"
)

// Console reads commands from stdin until EOF or a quit command.
type Console struct {
	in     io.Reader
	bus    *announce.Bus
	log    *slog.Logger
	cancel func()
}

// New builds a Console. cancel is called on "quit"/"exit" or EOF to
// unwind the rest of the process's task group.
func New(in io.Reader, bus *announce.Bus, log *slog.Logger, cancel func()) *Console {
	return &Console{in: in, bus: bus, log: log, cancel: cancel}
}

// Run blocks reading lines until input ends or a quit command arrives.
func (c *Console) Run() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		switch parts[0] {
		case "quit", "exit":
			c.cancel()
			return
		case "announce":
			if len(parts) == 2 && parts[1] != "" {
				c.bus.Announce(parts[1])
			} else {
				c.log.Info("usage: announce <message>")
			}
		case "log", "level":
			if len(parts) == 2 {
				if lvl, ok := parseLevel(parts[1]); ok {
					logging.Level.Set(lvl)
				} else {
					c.log.Warn("invalid log level")
				}
			} else {
				c.log.Info("usage: log <trace|debug|info|warn|error>")
			}
		default:
			c.log.Warn("unknown command", "command", parts[0])
		}
	}
	c.cancel()
}

// parseLevel maps the original's trace/debug/info/warn/error vocabulary
// onto slog's four levels; trace collapses into debug, the finest
// level slog has.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
