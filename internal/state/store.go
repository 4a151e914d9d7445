package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/homeclip/internal/homeclip"
)

// Snapshot represents the latest document and file list available to the UI.
type Snapshot struct {
	Content             string
	Revision            uint64 // bumped on every local edit and every reload
	SavedRevision       uint64 // last revision acknowledged by the server
	ExpiresAt           *time.Time
	Files               []homeclip.Attachment
	HasFiles            bool
	LastLoaded          time.Time
	LastError           error
	ConsecutiveFailures int
}

// Dirty reports whether the content has local edits the server has not
// acknowledged.
func (s Snapshot) Dirty() bool {
	return s.Revision != s.SavedRevision
}

// IsOffline returns true when the store has been unreachable for multiple
// consecutive requests.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the document and file list. The
// editing surface is the only caller of SetContent; a reload replaces
// everything wholesale.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetContent records a local edit and returns the new revision. Setting the
// same content again does not create a revision.
func (s *Store) SetContent(content string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content == s.snapshot.Content && s.snapshot.Revision != 0 {
		return s.snapshot.Revision
	}
	s.snapshot.Content = content
	s.snapshot.Revision++
	return s.snapshot.Revision
}

// Document returns the current content and its revision in one atomic read.
func (s *Store) Document() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Content, s.snapshot.Revision
}

// Dirty reports whether the current revision is newer than the last one the
// server acknowledged.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Dirty()
}

// MarkSaved records that rev reached the server. Older acknowledgements are
// ignored.
func (s *Store) MarkSaved(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev > s.snapshot.SavedRevision && rev <= s.snapshot.Revision {
		s.snapshot.SavedRevision = rev
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// ReplaceDocument overwrites the local document with a server response. The
// attachment list is replaced too when the response carries one. Unsaved local
// edits are discarded.
func (s *Store) ReplaceDocument(resp *homeclip.ContentResponse) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp == nil {
		return s.snapshot.Revision
	}
	s.snapshot.Content = resp.Content
	s.snapshot.Revision++
	s.snapshot.SavedRevision = s.snapshot.Revision
	s.snapshot.ExpiresAt = cloneTime(resp.ExpiresAt)
	if resp.HasAttachments() {
		s.snapshot.Files = cloneFiles(resp.Attachments)
		s.snapshot.HasFiles = true
	}
	s.snapshot.LastLoaded = time.Now()
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	return s.snapshot.Revision
}

// ReplaceFiles swaps in a fresh attachment list from the server.
func (s *Store) ReplaceFiles(files []homeclip.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Files = cloneFiles(files)
	s.snapshot.HasFiles = true
	s.snapshot.LastLoaded = time.Now()
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// RecordError keeps the previous data but records the failure for visibility.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Files returns a copy of the current attachment list.
func (s *Store) Files() []homeclip.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFiles(s.snapshot.Files)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Files = cloneFiles(s.snapshot.Files)
	snap.ExpiresAt = cloneTime(s.snapshot.ExpiresAt)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneFiles(items []homeclip.Attachment) []homeclip.Attachment {
	if len(items) == 0 {
		return nil
	}
	dup := make([]homeclip.Attachment, len(items))
	copy(dup, items)
	for i := range dup {
		dup[i].ExpiresAt = cloneTime(items[i].ExpiresAt)
	}
	return dup
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
