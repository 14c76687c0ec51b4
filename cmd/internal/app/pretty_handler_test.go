package app

import (
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerOutput(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newPrettyHandler(&buf, slog.LevelInfo))

	log.Info("session.rotated", "user_id", "u1")
	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "session.rotated") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "user_id=u1") {
		t.Fatalf("output = %q", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newPrettyHandler(&buf, slog.LevelWarn))

	log.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info leaked through warn filter: %q", buf.String())
	}
	log.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("warn missing: %q", buf.String())
	}
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	var buf strings.Builder
	log := slog.New(newPrettyHandler(&buf, slog.LevelInfo)).
		With("service", "gymgate").WithGroup("http")

	log.Info("request", "status", 200)
	out := buf.String()
	if !strings.Contains(out, "service=gymgate") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "http.status=200") {
		t.Fatalf("output = %q", out)
	}
}
