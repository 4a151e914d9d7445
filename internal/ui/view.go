package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/homeclip/internal/expiry"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/homeclip"
)

const (
	filesPaneMinWidth = 28
	filesPaneMaxWidth = 44
	chromeHeight      = 3 // header, status line, command bar
)

// layout sizes the editor and preview to the current window.
func (m *Model) layout() {
	editorW, bodyH := m.editorSize()
	m.editor.SetWidth(max(editorW-2, 1))
	m.editor.SetHeight(max(bodyH-2, 1))
	m.preview.Width = max(editorW-2, 1)
	m.preview.Height = max(bodyH-2, 1)
	m.renderPreview()
}

func (m Model) editorSize() (width, height int) {
	height = max(m.height-chromeHeight, 3)
	return m.width - m.filesPaneWidth(), height
}

func (m Model) filesPaneWidth() int {
	w := m.width / 3
	return min(max(w, filesPaneMinWidth), filesPaneMaxWidth)
}

// renderMain renders the header, both panes, the status line and the
// command bar.
func (m Model) renderMain() string {
	editorW, bodyH := m.editorSize()
	filesW := m.filesPaneWidth()

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderEditorPane(editorW, bodyH),
		m.renderFilesPane(filesW, bodyH),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusLine(),
		m.renderCommandBar(),
	)
}

// renderHeader shows the server, connectivity and the document countdown.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bar := newHeaderBar(m.theme.Surface)
	bar.add("homeclip", styles.Logo)
	bar.add(truncate(m.server, 40), styles.MutedText)
	bar.addDocumentState(
		m.snapshot.IsOffline(),
		m.expiryText(expiry.DocumentKey, m.snapshot.ExpiresAt),
		m.snapshot.Dirty(),
		styles,
	)
	return bar.render(styles.Header, m.width)
}

func (m Model) renderEditorPane(width, height int) string {
	styles := m.theme.Styles()
	pane := styles.Pane
	if m.focus == PaneEditor {
		pane = styles.FocusedPane
	}
	content := m.editor.View()
	if m.showPreview {
		content = m.preview.View()
	}
	return pane.Width(max(width-2, 1)).Height(max(height-2, 1)).Render(content)
}

func (m Model) renderFilesPane(width, height int) string {
	styles := m.theme.Styles()
	pane := styles.Pane
	if m.focus == PaneFiles {
		pane = styles.FocusedPane
	}
	inner := max(width-2, 1)

	list := m.snapshot.Files
	lines := []string{
		styles.AccentText.Bold(true).Render(fmt.Sprintf("Files (%d)", len(list))),
		"",
	}
	switch {
	case !m.snapshot.HasFiles && m.snapshot.LastLoaded.IsZero():
		lines = append(lines, styles.MutedText.Render("Loading..."))
	case len(list) == 0:
		lines = append(lines, styles.MutedText.Render(files.EmptyText))
	default:
		for i, file := range list {
			name, meta := m.fileRow(file, inner-2)
			if i == m.selected && m.focus == PaneFiles {
				row := styles.Selected.Width(inner).Render("> " + name)
				lines = append(lines, row, styles.Selected.Width(inner).Render("  "+meta))
			} else {
				lines = append(lines, styles.Text.Render("  "+name), styles.MutedText.Render("  "+meta))
			}
		}
	}

	return pane.Width(inner).Height(max(height-2, 1)).Render(strings.Join(lines, "\n"))
}

// fileRow renders the two lines of a file entry: the name, and size plus
// expiration.
func (m Model) fileRow(file homeclip.Attachment, width int) (string, string) {
	name := file.FileName
	if name == "" {
		name = file.ID
	}
	meta := files.Size(file.Size)
	if text := m.expiryText(file.ID, file.ExpiresAt); text != "" {
		meta += " · " + text
	}
	return truncateName(name, width), truncate(meta, width)
}

// expiryText prefers the live countdown text and falls back to computing it.
func (m Model) expiryText(id string, at *time.Time) string {
	if at == nil {
		return ""
	}
	if m.countdowns != nil {
		if text, ok := m.countdowns.Text(id); ok {
			return text
		}
	}
	return expiry.Label(at, time.Now())
}

// renderStatusLine shows the operation status and the local notice.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	text := styles.StatusStyle(m.statusSnap.Class).Render(m.statusSnap.Text)
	if m.notice != "" {
		text += styles.FaintText.Render("  " + m.notice)
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(text)
}

// renderCommandBar renders the short help for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bindings := m.keys.ShortHelp()
	if m.focus == PaneFiles {
		bindings = m.keys.filesHelp()
	}

	h := m.help
	h.Width = m.width - 2
	h.ShortSeparator = "  "
	h.Styles.ShortKey = styles.WarningText
	h.Styles.ShortDesc = styles.MutedText
	h.Styles.ShortSeparator = styles.FaintText
	return styles.Footer.Width(m.width).Render(h.ShortHelpView(bindings))
}
