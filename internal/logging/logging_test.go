package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterCountsWarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	counter := &Counter{}
	logger := New(&buf, FormatText, slog.LevelError, counter)

	c := Component(logger, "macro")
	c.Info("ignored")
	c.Warn("missing image")
	c.Warn("missing link")
	c.Error("unknown section type")

	assert.Equal(t, 2, counter.Warnings())
	assert.Equal(t, 1, counter.Errors())
	assert.NotContains(t, buf.String(), "missing image")
	assert.Contains(t, buf.String(), "component=macro")

	counter.Reset()
	assert.Zero(t, counter.Warnings())
	assert.Zero(t, counter.Errors())
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON, slog.LevelInfo, nil).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
