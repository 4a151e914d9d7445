package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/homeclip"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmDeleteModal is the yes/no gate in front of a delete.
type confirmDeleteModal struct {
	file  homeclip.Attachment
	onYes tea.Cmd
}

func (m confirmDeleteModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		return m, m.onYes, true
	case key.Matches(keyMsg, keys.Deny):
		return m, nil, true
	}
	return m, nil, false
}

func (m confirmDeleteModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	name := m.file.FileName
	if name == "" {
		name = m.file.ID
	}
	body := strings.Join([]string{
		styles.DangerText.Render("Delete file"),
		"",
		styles.Text.Render(fmt.Sprintf("Are you sure you want to delete %s?", name)),
		styles.MutedText.Render(files.Size(m.file.Size)),
		"",
		styles.WarningText.Render("y") + styles.MutedText.Render(" delete   ") +
			styles.WarningText.Render("n") + styles.MutedText.Render(" cancel"),
	}, "\n")
	return placeModal(theme, width, height, body, theme.Danger)
}

// uploadModal asks for one or more local paths.
type uploadModal struct {
	input    textinput.Model
	onSubmit func(paths []string) tea.Cmd
}

func newUploadModal(onSubmit func(paths []string) tea.Cmd) uploadModal {
	input := textinput.New()
	input.Placeholder = "~/Downloads/report.pdf ~/notes.md"
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Width = 48
	input.Focus()
	return uploadModal{input: input, onSubmit: onSubmit}
}

func (m uploadModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, nil, true
		case "enter":
			paths := strings.Fields(m.input.Value())
			if len(paths) == 0 {
				return m, nil, true
			}
			return m, m.onSubmit(paths), true
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m uploadModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := strings.Join([]string{
		styles.AccentText.Bold(true).Render("Upload files"),
		styles.MutedText.Render("Paths separated by spaces. Files upload one at a time."),
		"",
		m.input.View(),
		"",
		styles.WarningText.Render("enter") + styles.MutedText.Render(" upload   ") +
			styles.WarningText.Render("esc") + styles.MutedText.Render(" cancel"),
	}, "\n")
	return placeModal(theme, width, height, body, theme.Accent)
}

func placeModal(theme Theme, width, height int, body, border string) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(56).
		Render(body)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
