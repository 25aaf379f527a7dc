package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRFC3339Millis(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 12, 30, 45, 123_456_789, time.FixedZone("MSK", 3*3600))
	assert.Equal(t, "2026-03-01T09:30:45.123Z", formatRFC3339Millis(ts))
}

func TestNewWithWriter_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, false)
	log.Debug("hidden")
	log.Info("shown", "empty", "")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "empty=")

	buf.Reset()
	NewWithWriter(&buf, true).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
