package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSON carries service name and honours level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "warn", Format: "json", Service: "storefront-api"}, &buf)

		logger.Info().Msg("dropped")
		logger.Warn().Msg("kept")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "kept", entry["message"])
		assert.Equal(t, "storefront-api", entry["service_name"])
		assert.Contains(t, entry, "time")
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "verbose", Format: "json"}, &buf)

		logger.Debug().Msg("dropped")
		logger.Info().Msg("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
		assert.NotContains(t, buf.String(), "service_name")
	})

	t.Run("Console format is human readable", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "info", Format: "console", Service: "storefront-tools"}, &buf)

		logger.Info().Msg("migrations applied")

		out := buf.String()
		assert.Contains(t, out, "migrations applied")
		assert.Contains(t, out, "storefront-tools")
		assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
	})
}
