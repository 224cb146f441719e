// Package logging sets up structured logging with key redaction,
// mirroring the original server's fern dual-sink setup and its
// Redacted<T> convention: a prefixed API key must never reach a log
// line unredacted.
package logging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
)

// keyPattern matches a full prefixed API key (spec GLOSSARY: "prefix_
// shortToken_longToken"), base58-alphabet tokens either side of the
// fixed "extrachat" prefix.
var keyPattern = regexp.MustCompile(`extrachat_[1-9A-HJ-NP-Za-km-z]+_[1-9A-HJ-NP-Za-km-z]+`)

const redacted = "[redacted]"

// Level is shared with the admin console's "log|level" command (spec
// §6.5) so verbosity can change without restarting the process.
var Level = new(slog.LevelVar)

// New builds a logger that writes to stdout and, if logFile is
// non-nil, also to a file, with every string attribute scrubbed for
// embedded API keys before either sink formats it.
func New(stdout io.Writer, logFile io.Writer) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: Level}),
	}
	if logFile != nil {
		handlers = append(handlers, slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var h slog.Handler = &redactingHandler{inner: handlers}
	return slog.New(h)
}

// redactingHandler fans out to multiple inner handlers after scrubbing
// every string-valued attribute.
type redactingHandler struct {
	inner []slog.Handler
	attrs []slog.Attr
	group string
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, inner := range h.inner {
		if inner.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	record.Message = keyPattern.ReplaceAllString(record.Message, redacted)

	redactedAttrs := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		redactedAttrs = append(redactedAttrs, redactAttr(a))
		return true
	})

	for _, inner := range h.inner {
		clone := record.Clone()
		clone.Message = record.Message
		// Rebuild attrs on the clone since Record.Attrs was consumed above.
		newRecord := slog.NewRecord(clone.Time, clone.Level, clone.Message, clone.PC)
		newRecord.AddAttrs(redactedAttrs...)
		if err := inner.Handle(ctx, newRecord); err != nil {
			return err
		}
	}
	return nil
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.inner))
	for i, inner := range h.inner {
		redacted := make([]slog.Attr, len(attrs))
		for j, a := range attrs {
			redacted[j] = redactAttr(a)
		}
		next[i] = inner.WithAttrs(redacted)
	}
	return &redactingHandler{inner: next, attrs: append(h.attrs, attrs...), group: h.group}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.inner))
	for i, inner := range h.inner {
		next[i] = inner.WithGroup(name)
	}
	return &redactingHandler{inner: next, attrs: h.attrs, group: name}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if scrubbed := keyPattern.ReplaceAllString(s, redacted); scrubbed != s {
			return slog.String(a.Key, scrubbed)
		}
	}
	return a
}
