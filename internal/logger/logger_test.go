package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	if err := Configure("warn", &buf); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("tier", "sqlite").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "sqlite") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestConfigure_BadLevel(t *testing.T) {
	if err := Configure("loud", nil); err == nil {
		t.Error("expected error for unknown level")
	}
}
