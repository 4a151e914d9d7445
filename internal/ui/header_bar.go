package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// headerGap separates header segments.
const headerGap = "  "

// headerBar assembles the one-line header. Each styled run ends with an ANSI
// reset, so the gaps between words and segments are painted with the surface
// color explicitly or the bar shows holes.
type headerBar struct {
	surface lipgloss.Color
	fill    lipgloss.Style
	parts   []string
}

func newHeaderBar(surface string) *headerBar {
	c := lipgloss.Color(surface)
	return &headerBar{surface: c, fill: lipgloss.NewStyle().Background(c)}
}

// add appends a segment. Empty text adds nothing.
func (h *headerBar) add(text string, style lipgloss.Style) {
	if text == "" {
		return
	}
	st := style.Background(h.surface)
	var b strings.Builder
	for text != "" {
		i := strings.IndexByte(text, ' ')
		switch {
		case i < 0:
			b.WriteString(st.Render(text))
			text = ""
		case i == 0:
			n := len(text) - len(strings.TrimLeft(text, " "))
			b.WriteString(h.fill.Render(text[:n]))
			text = text[n:]
		default:
			b.WriteString(st.Render(text[:i]))
			text = text[i:]
		}
	}
	h.parts = append(h.parts, b.String())
}

// addDocumentState appends the Offline, countdown and Unsaved chips in that
// order, skipping the ones that do not apply.
func (h *headerBar) addDocumentState(offline bool, countdown string, dirty bool, styles Styles) {
	if offline {
		h.add("Offline", styles.DangerText)
	}
	h.add(countdown, styles.WarningText)
	if dirty {
		h.add("Unsaved", styles.AccentText)
	}
}

func (h *headerBar) render(frame lipgloss.Style, width int) string {
	return frame.Width(width).Render(strings.Join(h.parts, h.fill.Render(headerGap)))
}
