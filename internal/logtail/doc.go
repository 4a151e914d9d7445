// Package logtail reads the tail of the client log for `homeclip logs`.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines while scanning the file once, so
// memory stays O(maxLines) regardless of file size. ReadRotated continues into
// the rotated backups written by the log roller when the active file is
// short, newest backup first, and returns lines in chronological order.
//
//	lines, err := logtail.ReadRotated(cfg.LogFile, 200)
//
// # Levels
//
// The client logs with slog's text handler, so every entry carries a
// level=LEVEL field. ParseLevel extracts it and Filter drops entries below a
// threshold. Lines without a level stay attached to the entry before them.
//
// # Colorization
//
// Palette renders lines with lipgloss styles chosen by level. Malformed lines
// are rendered faint rather than rejected.
//
// # Error Handling
//
// Read returns nil, nil for non-existent files. Other errors are returned
// wrapped.
package logtail
