// Package prefs handles homeclip user preferences persistence.
// Preferences are stored in ~/.config/homeclip/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Prefs holds user preferences. An empty Theme means none was ever stored.
type Prefs struct {
	Theme string `toml:"theme,omitempty"`
}

const defaultPrefsPath = "~/.config/homeclip/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Stored reports whether an explicit theme was saved.
func (p Prefs) Stored() bool {
	return p.Theme == ThemeDark || p.Theme == ThemeLight
}

// ResolveTheme returns the stored theme, or asks detect when nothing valid
// was stored.
func (p Prefs) ResolveTheme(detect func() bool) string {
	if p.Stored() {
		return p.Theme
	}
	if detect != nil && !detect() {
		return ThemeLight
	}
	return ThemeDark
}

// DetectDark probes the terminal background colour.
func DetectDark() bool {
	return termenv.HasDarkBackground()
}

// Toggle returns the other theme.
func Toggle(theme string) string {
	if theme == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Load reads preferences from the given path. Missing or unreadable files
// yield empty preferences.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	prefs.Theme = strings.ToLower(strings.TrimSpace(prefs.Theme))
	if !prefs.Stored() {
		prefs.Theme = ""
	}
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
