package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedactsKeyInMessage(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, nil)

	log.Info("login failed for extrachat_ABCDEFGH_123456789ABCDEFGHJKLMNPQ")

	out := buf.String()
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "extrachat_ABCDEFGH_123456789ABCDEFGHJKLMNPQ")
}

func TestNewRedactsKeyInAttr(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, nil)

	log.Info("authenticate", "key", "extrachat_12345678_123456789ABCDEFGHJKLMNPQ")

	out := buf.String()
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "123456789ABCDEFGHJKLMNPQ")
}

func TestNewWritesToBothSinks(t *testing.T) {
	var stdout, file bytes.Buffer
	log := New(&stdout, &file)

	log.Info("hello")

	assert.NotEmpty(t, stdout.String())
	assert.NotEmpty(t, file.String())
}

func TestLevelVarGatesVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, nil)

	prev := Level.Level()
	defer Level.Set(prev)

	Level.Set(slog.LevelWarn)
	buf.Reset()
	log.Debug("should be suppressed")
	assert.Empty(t, buf.String())

	buf.Reset()
	log.Warn("should appear")
	assert.NotEmpty(t, buf.String())
}
