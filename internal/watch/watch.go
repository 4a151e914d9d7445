// Package watch turns a local file into the editing surface: every write to
// the file is an edit of the shared document.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Editor records document content. It reports whether the content
// differed from the current document.
type Editor interface {
	Edit(content string) (revision uint64, changed bool)
}

// Watcher mirrors one file into the document.
type Watcher struct {
	path   string
	editor Editor
	logger *slog.Logger
}

// New builds a Watcher for path.
func New(path string, editor Editor, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: abs, editor: editor, logger: logger}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Sync hands the file's content to the editor and reports whether it was
// an edit. A missing file is not an edit.
func (w *Watcher) Sync() (bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", w.path, err)
	}
	_, changed := w.editor.Edit(string(data))
	return changed, nil
}

// Run watches the file's directory, so editors that save by renaming a temp
// file over the original are seen too, until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			changed, err := w.Sync()
			if err != nil {
				w.logger.Warn("file read failed", "path", w.path, "error", err)
				continue
			}
			if changed {
				w.logger.Debug("file edited", "path", w.path, "op", event.Op.String())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// WriteDocument replaces the file contents atomically. The resulting watch
// event carries the store's own content and is not treated as an edit.
func WriteDocument(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
