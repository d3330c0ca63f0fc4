package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

// TestParseLevel verifies the mapping of configured level names.
//
// WHY: LOG_LEVEL comes straight from the environment; a typo must not
// silence the server, so unknown names fall back to info.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestNewWithOutput verifies that the logger writes JSON lines and honours the level.
//
// WHY: Log shipping expects one JSON object per line with level and message fields.
func TestNewWithOutput(t *testing.T) {
	t.Run("writes JSON at or above level", func(t *testing.T) {
		// Setup
		var buf bytes.Buffer
		logger := NewWithOutput("info", &buf)

		// Execute
		logger.Debug().Msg("hidden")
		logger.Info().Str("portfolio", "Growth").Msg("calculated")

		// Assert
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected a single JSON line, got %q: %v", buf.String(), err)
		}
		if entry["message"] != "calculated" {
			t.Errorf("Expected message 'calculated', got %v", entry["message"])
		}
		if entry["portfolio"] != "Growth" {
			t.Errorf("Expected portfolio field 'Growth', got %v", entry["portfolio"])
		}
		if entry["level"] != "info" {
			t.Errorf("Expected level 'info', got %v", entry["level"])
		}
	})

	t.Run("silent logger discards output", func(t *testing.T) {
		logger := NewSilent()
		logger.Error().Msg("nobody hears this")
	})
}
