package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want log.Level
	}{
		{name: "empty defaults to info", in: "", want: log.InfoLevel},
		{name: "debug", in: "debug", want: log.DebugLevel},
		{name: "warn", in: "warn", want: log.WarnLevel},
		{name: "unknown defaults to info", in: "loud", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	tc := []struct {
		in   int64
		want string
	}{
		{in: 512, want: "512 B"},
		{in: 2048, want: "2.0 KiB"},
		{in: 20 << 10, want: "20 KiB"},
		{in: 3 << 20, want: "3.0 MiB"},
		{in: -1, want: "0 B"},
	}

	for _, tt := range tc {
		if got := HumanSize(tt.in); got != tt.want {
			t.Errorf("HumanSize(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "component=test") {
			t.Errorf("unexpected log output: %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "mosaic.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("written")
	})

	t.Run("GenerateID is unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})
}
