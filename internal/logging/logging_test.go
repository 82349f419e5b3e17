package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.Level)
	assert.Nil(t, cfg.Output)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected string
	}{
		{"debug", "debug", "DEBUG"},
		{"Debug uppercase", "DEBUG", "DEBUG"},
		{"info", "info", "INFO"},
		{"warn", "warn", "WARN"},
		{"warning alias", "warning", "WARN"},
		{"error", "error", "ERROR"},
		{"unknown falls back to info", "loud", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level).String())
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "debug", Output: &buf})

	log.Debug("fetched", "role", "poster")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched", entry["msg"])
	assert.Equal(t, "poster", entry["role"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "text", Level: "warn", Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_SetsGlobal(t *testing.T) {
	oldLogger := logger
	defer func() { logger = oldLogger }()

	var buf bytes.Buffer
	Setup(Config{Format: "text", Level: "info", Output: &buf})

	Info("hello", "n", 1)
	assert.Contains(t, buf.String(), "hello")
}

func TestGet_ReturnsDefaultBeforeSetup(t *testing.T) {
	oldLogger := logger
	logger = nil
	defer func() { logger = oldLogger }()

	assert.NotNil(t, Get())
}

func TestLogFunctions_DoNotPanic(t *testing.T) {
	oldLogger := logger
	defer func() { logger = oldLogger }()
	logger = Discard()

	assert.NotPanics(t, func() { Debug("test message") })
	assert.NotPanics(t, func() { Info("test message") })
	assert.NotPanics(t, func() { Warn("test message") })
	assert.NotPanics(t, func() { Error("test message") })
}
