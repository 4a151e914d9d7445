package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	expectedAll := numbered("Line", 10)
	writeLines(t, logPath, expectedAll)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestReadRotated(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "homeclip.log")
	writeLines(t, filepath.Join(dir, "homeclip-2026-10-01T10-00-00.000.log"), numbered("oldest", 3))
	writeLines(t, filepath.Join(dir, "homeclip-2026-10-02T10-00-00.000.log"), numbered("older", 3))
	writeLines(t, active, numbered("current", 2))

	got, err := ReadRotated(active, 6)
	if err != nil {
		t.Fatalf("ReadRotated() error = %v", err)
	}
	want := []string{"oldest 3", "older 1", "older 2", "older 3", "current 1", "current 2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadRotated() = %v, want %v", got, want)
	}

	got, err = ReadRotated(active, 2)
	if err != nil {
		t.Fatalf("ReadRotated() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"current 1", "current 2"}) {
		t.Fatalf("ReadRotated(2) = %v, want only the active file", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		line   string
		want   slog.Level
		wantOK bool
	}{
		{`time=2026-10-18T10:00:00.000Z level=INFO msg="file uploaded" file=a.txt`, slog.LevelInfo, true},
		{`time=2026-10-18T10:00:00.000Z level=WARN msg="save failed"`, slog.LevelWarn, true},
		{`time=2026-10-18T10:00:00.000Z level=ERROR msg=boom`, slog.LevelError, true},
		{`time=2026-10-18T10:00:00.000Z level=DEBUG msg=saved`, slog.LevelDebug, true},
		{`    continuation without level`, slog.LevelInfo, false},
		{`level=LOUD msg=x`, slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.line)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		`level=DEBUG msg=saved`,
		`level=WARN msg="save failed"`,
		`  detail for the warning`,
		`level=INFO msg=loaded`,
		`level=ERROR msg="delete failed"`,
	}
	got := Filter(lines, slog.LevelWarn)
	want := []string{lines[1], lines[2], lines[4]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
}

func TestColorizeLinesKeepsText(t *testing.T) {
	p := DefaultPalette()
	lines := []string{`level=ERROR msg=boom`, `plain`}
	got := p.ColorizeLines(lines)
	if len(got) != len(lines) {
		t.Fatalf("ColorizeLines returned %d lines, want %d", len(got), len(lines))
	}
	for i := range lines {
		if !strings.Contains(got[i], lines[i]) {
			t.Errorf("ColorizeLines()[%d] = %q, want it to contain %q", i, got[i], lines[i])
		}
	}
}
