package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONInProd(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "prod", "")

	logger.Debug().Msg("hidden")
	logger.Info().Str("appointment_id", "a1").Msg("scheduled")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["appointment_id"] != "a1" || entry["message"] != "scheduled" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestUseConsole(t *testing.T) {
	cases := []struct {
		env, format string
		want        bool
	}{
		{"dev", "", true},
		{"dev", "json", false},
		{"prod", "", false},
		{"prod", "console", true},
	}
	for _, tc := range cases {
		if got := useConsole(tc.env, tc.format); got != tc.want {
			t.Fatalf("useConsole(%q, %q) = %v, want %v", tc.env, tc.format, got, tc.want)
		}
	}
}

func TestFromEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	boot := fromEnv(&buf)
	boot.Debug().Msg("hidden")
	boot.Error().Str("stage", "config").Msg("config load error")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single json line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" || entry["stage"] != "config" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
