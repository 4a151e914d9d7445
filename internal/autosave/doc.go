// Package autosave turns a stream of edits into saves.
//
// Every edit re-arms a debounce timer (500ms by default) and shows the typing
// status. When the timer fires the whole document is sent to the remote store.
// A single-flight guard keeps at most one save request outstanding: a flush
// that arrives while a save is in flight is dropped, and the in-flight save
// re-arms the timer on completion when edits were left behind. Failed saves
// are not retried; the document stays dirty until the next edit or flush.
//
// Outcomes are flashed on the status controller ("Saved" for two seconds,
// "Error saving" for three) and revert to idle only if nothing newer has been
// shown in the meantime.
//
// Timers come from a clockwork.Clock so tests can drive time explicitly.
package autosave
