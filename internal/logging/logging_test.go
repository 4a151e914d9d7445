package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesTextRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "homeclip.log")
	logger, closer, err := New(Options{Path: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("file uploaded", "file", "a.txt")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `level=INFO msg="file uploaded" file=a.txt`) {
		t.Fatalf("log = %q, want info record", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug record written at info level")
	}
}

func TestNew_DebugFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homeclip.log")
	logger, closer, err := New(Options{Path: path, Debug: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("saved", "revision", 3)
	_ = closer.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "level=DEBUG") {
		t.Fatalf("log = %q, want debug record", data)
	}
}

func TestNew_EmptyPathDiscards(t *testing.T) {
	logger, closer, err := New(Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("nowhere")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		want    slog.Level
		wantErr bool
	}{
		{"", false, slog.LevelInfo, false},
		{"", true, slog.LevelDebug, false},
		{"WARN", true, slog.LevelWarn, false},
		{"error", false, slog.LevelError, false},
		{"verbose", false, slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.name, tt.debug)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseLevel(%q, %v) = %v, %v", tt.name, tt.debug, got, err)
		}
	}
}
