// Package files manages the attachment list of the shared clipboard.
//
// The Registry never edits the list in place. Every upload or delete that
// succeeds is followed by a fresh Load, and the server's answer replaces the
// local list wholesale in server order. Uploads run one file at a time; a
// failed file is reported and the rest of the batch continues. Deletes sit
// behind a Confirmer so no request is sent until someone said yes.
//
// Handlers are keyed by attachment ID, so any renderer (the TUI list, the
// CLI) can drive the same operations.
package files
