package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/homeclip/internal/state"
)

// countingEditor records into a store and counts the edits it accepted.
type countingEditor struct {
	store *state.Store
	n     atomic.Int32
}

func (c *countingEditor) Edit(content string) (uint64, bool) {
	_, before := c.store.Document()
	rev := c.store.SetContent(content)
	if rev == before {
		return rev, false
	}
	c.n.Add(1)
	return rev, true
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSyncOnlyNotifiesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.txt")
	store := &state.Store{}
	editor := &countingEditor{store: store}
	w, err := New(path, editor, quiet())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if changed, err := w.Sync(); err != nil || changed {
		t.Fatalf("Sync(missing) = %v, %v; want false, nil", changed, err)
	}

	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if changed, err := w.Sync(); err != nil || !changed {
		t.Fatalf("Sync = %v, %v; want true, nil", changed, err)
	}
	if changed, _ := w.Sync(); changed {
		t.Fatalf("second Sync with same content reported a change")
	}
	if got := editor.n.Load(); got != 1 {
		t.Fatalf("edits = %d, want 1", got)
	}
	if content, _ := store.Document(); content != "hello" {
		t.Fatalf("store content = %q", content)
	}
}

func TestRunPicksUpWritesAndRenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.txt")
	store := &state.Store{}
	editor := &countingEditor{store: store}
	w, err := New(path, editor, quiet())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			if content, _ := store.Document(); content == want {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		content, _ := store.Document()
		t.Fatalf("store content = %q, want %q", content, want)
	}

	// Give the watcher a moment to register before the first write.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("typed in vim"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitFor("typed in vim")

	if err := WriteDocument(path, "renamed over"); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	waitFor("renamed over")

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if content, _ := store.Document(); content != "renamed over" {
		t.Fatalf("unrelated file changed the document: %q", content)
	}
}

func TestWriteDocumentLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.txt")
	if err := WriteDocument(path, "a"); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only clip.txt", len(entries))
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a" {
		t.Fatalf("content = %q", data)
	}
}
