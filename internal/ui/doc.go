// Package ui provides the terminal editor for homeclip.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model is the root tea.Model; it owns the
// editing surface (a bubbles textarea), an optional Markdown preview rendered
// with Glamour, and the files pane. It never talks to the server directly:
// every request goes through the sync engine components handed over in
// Options, and the model only re-reads their snapshots.
//
// # Package Structure
//
//   - app.go: Model, Options, Init/Update/View and Run
//   - commands.go: tea.Cmd wrappers around engine calls and their messages
//   - view.go: header, panes, status line and command bar rendering
//   - preview.go: Markdown preview
//   - modal.go: delete confirmation and upload path prompt
//   - help.go: keyboard help overlay
//   - keys.go: key bindings
//   - theme.go: Nightfox/Dawnfox themes and pre-built styles
//
// # Edits and Autosave
//
// Every key that changes the textarea value is forwarded to the store and
// the autosave scheduler. The scheduler owns the debounce timer; the model
// just shows the status line the scheduler maintains.
//
// # Visibility
//
// Terminal focus stands in for page visibility. A blur event or ctrl+z runs
// the hide protocol synchronously, so a pending save reaches the server
// before the terminal goes away. A focus event or resuming from suspend
// runs the show protocol, which reloads the document from the server.
// Quitting runs the unload protocol before the program exits.
//
// # Repaint
//
// The engine signals status and countdown changes on a coalesced channel.
// listenCmd turns each signal into a changedMsg and re-subscribes, so the
// model repaints without polling.
package ui
