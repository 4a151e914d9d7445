// Package app is the composition root for homeclip.
//
// # Overview
//
// This package wires configuration, logging, the remote store client and the
// sync engine components into an Engine, and runs either the TUI or a single
// command against it. The command line and the TUI share the same Engine so
// they autosave, reload and manage files identically.
//
// # Components
//
//   - engine.go: Open/NewEngine build the Engine; Close runs the unload
//     protocol and releases the log file
//   - app.go: Run starts the TUI on top of an Engine
//   - poller.go: optional background refresh of the attachment list
//
// # Wiring
//
//	Open()
//	  ├─> config.Load()          ~/.config/homeclip/config.toml
//	  ├─> logging.New()          rotating slog text log
//	  └─> NewEngine()
//	        ├─> homeclip.NewClient()
//	        ├─> state.Store{}    document, revisions, file list
//	        ├─> status.New()     single status line
//	        ├─> expiry.NewCountdowns()
//	        ├─> autosave.New()   debounce + single-flight saves
//	        ├─> files.New()      uploads, downloads, deletes
//	        └─> visibility.New() hide/show/unload protocols
//
// # Change Notification
//
// Status transitions and countdown ticks happen on engine goroutines. They
// are coalesced into Changed(), a channel with room for one signal, so a
// slow renderer never blocks a save.
//
// # Error Handling
//
// Fatal errors (returned from Open/Run):
//   - Configuration file present but invalid
//   - Server address that cannot be parsed
//   - Log file that cannot be opened
//
// Recoverable errors are shown on the status line and logged; the local
// document is never discarded because a request failed.
package app
