package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"verbose", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); (got != nil) != tt.wantOK {
				t.Errorf("parseLevel(%q) = %v, want ok=%v", tt.in, got, tt.wantOK)
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bookmarks.log")
	log := NewWithOptions(Options{Level: "info", File: path, MaxSizeMB: 1})

	log.Info("sync finished", String("op", "push"), Int("folders", 3))
	log.Debug("not written at info level")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"sync finished"`) || !strings.Contains(out, `"op":"push"`) {
		t.Errorf("expected structured entry in log file, got %q", out)
	}
	if strings.Contains(out, "not written") {
		t.Error("debug entry leaked into info-level file")
	}
}

func TestWithAddsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with.log")
	log := NewWithOptions(Options{Level: "debug", File: path}).With(String("component", "dispatch"))

	log.Warn("queue full")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"component":"dispatch"`) {
		t.Errorf("child logger fields missing: %q", data)
	}
}
