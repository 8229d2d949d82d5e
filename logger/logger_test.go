package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWithOptions_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	log, err := InitWithOptions(path, false)
	if err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	log.Info().Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestInitWithOptions_BadPath(t *testing.T) {
	if _, err := InitWithOptions(filepath.Join(t.TempDir(), "missing", "test.log"), false); err == nil {
		t.Error("expected error for unwritable log path")
	}
}
