package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogrusLogger_JSONOutputCarriesFields(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "json"
	cfg.Fields = map[string]string{"service": "tradesignal"}

	var buf bytes.Buffer
	log := NewLogrusLogger(cfg)
	log.SetOutput(&buf)

	log.WithField("component", "stream").Info("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connected", entry["message"])
	assert.Equal(t, "stream", entry["component"])
	assert.Equal(t, "tradesignal", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestLogrusLogger_ChildHonoursParentLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "text"

	var buf bytes.Buffer
	log := NewLogrusLogger(cfg)
	log.SetOutput(&buf)

	child := log.WithField("component", "feed")
	child.Debug("hidden")
	assert.Empty(t, buf.String())

	child.SetLevel(LevelDebug)
	child.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
