package mixcore

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARNING", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ResolveLogLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ResolveLogLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestEngineLogsLifecycle(t *testing.T) {
	var out bytes.Buffer
	prev := Logger()
	SetLogger(NewLogger(&out, slog.LevelInfo))
	defer SetLogger(prev)

	e, err := NewEngine(testEngineConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	e.Stop()
	log := out.String()
	for _, msg := range []string{"engine started", "engine stopped"} {
		if !strings.Contains(log, msg) {
			t.Errorf("log lacks %q:\n%s", msg, log)
		}
	}
}
