//go:build !(rp2040 || rp2350)

package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel(LevelInfo)

	SetLevel(LevelWarn)
	Info("hidden")
	Warn("shown", "task", "composer")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "task=composer") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{"debug": LevelDebug, "warn": LevelWarn, "error": LevelError, "": LevelInfo} {
		if got := ParseLevel(s); got != want {
			t.Fatalf("ParseLevel(%q) = %v", s, got)
		}
	}
}
