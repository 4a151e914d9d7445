package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ReadRotated is Read across rotation: when the active file holds fewer than
// maxLines, older lines are taken from the rotated backups next to it
// (name-<timestamp>.ext), newest backup first.
func ReadRotated(path string, maxLines int) ([]string, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	if maxLines <= 0 {
		return lines, nil
	}

	backups, err := Backups(path)
	if err != nil {
		return nil, err
	}
	for i := len(backups) - 1; i >= 0 && len(lines) < maxLines; i-- {
		older, err := Read(backups[i], maxLines-len(lines))
		if err != nil {
			return nil, err
		}
		lines = append(older, lines...)
	}
	return lines, nil
}

// Backups lists rotated copies of path, oldest first.
func Backups(path string) ([]string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), stem+"-*"+ext))
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	// Rotation timestamps sort lexically.
	sort.Strings(matches)
	return matches, nil
}

// ParseLevel extracts the level of a slog text line. Lines without a level
// field (continuations, foreign output) report ok=false.
func ParseLevel(line string) (level slog.Level, ok bool) {
	idx := strings.Index(line, "level=")
	if idx < 0 {
		return slog.LevelInfo, false
	}
	value := line[idx+len("level="):]
	if end := strings.IndexByte(value, ' '); end >= 0 {
		value = value[:end]
	}
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// Filter keeps lines at or above threshold. Lines without a level are kept with
// the entry before them.
func Filter(lines []string, threshold slog.Level) []string {
	out := make([]string, 0, len(lines))
	keep := true
	for _, line := range lines {
		if level, ok := ParseLevel(line); ok {
			keep = level >= threshold
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}
