package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Editing keys
// belong to the textarea, so global bindings use ctrl or function keys.
type keyMap struct {
	// Global
	Quit        key.Binding
	Suspend     key.Binding
	Help        key.Binding
	Save        key.Binding
	Reload      key.Binding
	ToggleTheme key.Binding
	Preview     key.Binding
	Copy        key.Binding
	Tab         key.Binding
	Escape      key.Binding

	// Files pane
	Up       key.Binding
	Down     key.Binding
	Upload   key.Binding
	Download key.Binding
	Delete   key.Binding

	// Modals
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "Quit"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "Suspend"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Toggle help"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save now"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Reload from server"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Toggle theme"),
		),
		Preview: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "Markdown preview"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "Copy to clipboard"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Editor/files"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to editor"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload files"),
		),
		Download: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "Download"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Reload, k.Tab, k.Preview, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Reload, k.Copy, k.Preview},
		{k.Tab, k.Up, k.Down, k.Upload, k.Download, k.Delete},
		{k.ToggleTheme, k.Help, k.Suspend, k.Quit},
	}
}

// filesHelp is the command bar while the files pane has focus.
func (k keyMap) filesHelp() []key.Binding {
	return []key.Binding{k.Upload, k.Download, k.Delete, k.Escape, k.Help, k.Quit}
}
