package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(*DispatcherLogger)
	}{
		{"debug", func(l *DispatcherLogger) { l.Debug("msg", "kind", "fired", "tick", 42) }},
		{"info", func(l *DispatcherLogger) { l.Info("msg", "kind", "fired", "tick", 42) }},
		{"error", func(l *DispatcherLogger) { l.Error("msg", "kind", "fired", "tick", 42) }},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
			tt.log(dl)

			entry := decodeLine(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "msg", entry["message"])
			assert.Equal(t, "fired", entry["kind"])
			assert.Equal(t, float64(42), entry["tick"])
			assert.Equal(t, "dispatcher", entry["component"])
		})
	}
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))
	dl.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestToFields(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want map[string]any
	}{
		{"empty", nil, map[string]any{}},
		{"pairs", []any{"a", 1, "b", "two"}, map[string]any{"a": 1, "b": "two"}},
		{"odd count drops tail", []any{"a", 1, "b"}, map[string]any{"a": 1}},
		{"non-string key skipped", []any{3, "x", "k", true}, map[string]any{"k": true}},
		{"attrs", []any{slog.Int("tick", 7), "kind", "hit"}, map[string]any{"tick": int64(7), "kind": "hit"}},
		{"error value", []any{"error", errors.New("queue full")}, map[string]any{"error": "queue full"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toFields(tt.in))
		})
	}
}
