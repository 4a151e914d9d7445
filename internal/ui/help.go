package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Editor",
			items: []helpItem{
				{"typing", "Autosaves after a short pause"},
				{"ctrl+s", "Save now"},
				{"ctrl+r", "Reload (drops unsaved edits)"},
				{"ctrl+y", "Copy document"},
				{"ctrl+v", "Paste"},
				{"f2", "Markdown preview"},
			},
		},
		{
			title: "Files",
			items: []helpItem{
				{"tab", "Switch editor/files"},
				{"j/k", "Move down/up"},
				{"u", "Upload files"},
				{"enter", "Download"},
				{"d", "Delete (asks first)"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"ctrl+t", "Toggle theme"},
				{"f1", "Toggle help"},
				{"ctrl+z", "Suspend"},
				{"ctrl+q", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
