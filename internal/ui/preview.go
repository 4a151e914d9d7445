package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minPreviewWidth = 20

// renderPreview renders the document as Markdown into the preview viewport.
// It is a no-op while the preview is hidden.
func (m *Model) renderPreview() {
	if !m.showPreview || m.store == nil {
		return
	}
	content, _ := m.store.Document()
	rendered, err := renderMarkdown(content, m.theme.Glamour, m.preview.Width)
	if err != nil {
		m.logger.Debug("markdown render failed", "error", err)
		rendered = content
	}
	m.preview.SetContent(rendered)
}

func renderMarkdown(text, style string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minPreviewWidth {
		width = minPreviewWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n"), nil
}
