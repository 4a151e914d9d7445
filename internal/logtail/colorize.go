package logtail

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Palette styles log lines by level.
type Palette struct {
	Debug lipgloss.Style
	Info  lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Other lipgloss.Style
}

// DefaultPalette follows the usual conventions: errors red, warnings yellow,
// info plain, debug dim.
func DefaultPalette() Palette {
	return Palette{
		Debug: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Info:  lipgloss.NewStyle(),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
		Other: lipgloss.NewStyle().Faint(true),
	}
}

// ColorizeLine renders one line with the style for its level.
func (p Palette) ColorizeLine(line string) string {
	level, ok := ParseLevel(line)
	if !ok {
		return p.Other.Render(line)
	}
	switch {
	case level >= slog.LevelError:
		return p.Error.Render(line)
	case level >= slog.LevelWarn:
		return p.Warn.Render(line)
	case level >= slog.LevelInfo:
		return p.Info.Render(line)
	default:
		return p.Debug.Render(line)
	}
}

// ColorizeLines renders every line.
func (p Palette) ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = p.ColorizeLine(line)
	}
	return out
}
