// Package state holds the client's local copy of the shared clipboard.
//
// # Overview
//
// The Store is the coordination point between the editing surface, the
// autosave scheduler, the visibility coordinator and the file registry. It
// owns the document text, the attachment list and the bookkeeping needed to
// tell whether local edits have reached the server.
//
// # Revisions
//
// Every local edit bumps Revision. A successful save acknowledges the
// revision that was read when the save started via MarkSaved, so edits made
// while a save was in flight keep the document dirty:
//
//	SetContent("a")   Revision=1 SavedRevision=0  dirty
//	save starts       reads revision 1
//	SetContent("ab")  Revision=2                  dirty
//	MarkSaved(1)      SavedRevision=1             still dirty
//
// A reload from the server (ReplaceDocument) is a wholesale replace: the
// content is overwritten, unsaved edits are discarded and the document
// becomes clean.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock held only while copying data, never
// during network I/O. Snapshot returns deep copies so callers can render
// without holding any lock.
//
// # Failures
//
// RecordError keeps the last good data and counts consecutive failures;
// IsOffline reports true after two in a row. Any successful load or save
// clears the counter.
package state
