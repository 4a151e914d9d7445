// Package visibility reacts to the editing surface being hidden, closed or
// shown again.
//
// Hiding or unloading flushes a pending debounced save before returning, on
// a best-effort basis. Showing the surface again reloads the document and the
// attachment list from the server and overwrites any local edits that were
// never sent: another session may have changed the document in the meantime
// and the last reader wins.
package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/homeclip"
	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
)

// DefaultErrorDisplay is how long "Error loading" stays visible.
const DefaultErrorDisplay = 3 * time.Second

// Scheduler is the autosave surface the coordinator pre-empts.
type Scheduler interface {
	Cancel() bool
	Flush(ctx context.Context) error
	Wait(ctx context.Context) error
	Unsent() bool
}

// Fetcher loads the document from the remote store.
type Fetcher interface {
	FetchContent(ctx context.Context) (*homeclip.ContentResponse, error)
}

// FileLoader reconciles the attachment list.
type FileLoader interface {
	Load(ctx context.Context) error
	Reconcile()
}

// Options configure a Coordinator.
type Options struct {
	ErrorDisplay time.Duration
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// Coordinator owns the hide/show protocol.
type Coordinator struct {
	sched   Scheduler
	remote  Fetcher
	store   *state.Store
	files   FileLoader
	status  *status.Controller
	clock   clockwork.Clock
	logger  *slog.Logger
	errShow time.Duration

	mu       sync.Mutex
	revert   clockwork.Timer
	unloaded bool
}

// New builds a Coordinator. files may be nil when no attachment list is shown.
func New(sched Scheduler, remote Fetcher, store *state.Store, files FileLoader, st *status.Controller, opts Options) *Coordinator {
	c := &Coordinator{
		sched:   sched,
		remote:  remote,
		store:   store,
		files:   files,
		status:  st,
		clock:   opts.Clock,
		logger:  opts.Logger,
		errShow: opts.ErrorDisplay,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.errShow <= 0 {
		c.errShow = DefaultErrorDisplay
	}
	return c
}

// Hide flushes immediately when a debounce timer is pending. Without a
// pending timer nothing is sent.
func (c *Coordinator) Hide(ctx context.Context) error {
	if !c.sched.Cancel() {
		return nil
	}
	c.logger.Debug("hidden with pending save, flushing")
	return c.sched.Flush(ctx)
}

// Unload is Hide for program exit. It also waits for an in-flight save and
// sends one final save for edits no attempt has carried yet. A revision whose
// save already failed is not sent again. Only the first call does anything.
func (c *Coordinator) Unload(ctx context.Context) error {
	c.mu.Lock()
	if c.unloaded {
		c.mu.Unlock()
		return nil
	}
	c.unloaded = true
	c.mu.Unlock()

	err := c.Hide(ctx)
	if waitErr := c.sched.Wait(ctx); waitErr != nil {
		return fmt.Errorf("wait for save: %w", waitErr)
	}
	if c.sched.Unsent() {
		c.logger.Debug("unsent edits at exit, flushing")
		err = c.sched.Flush(ctx)
	}
	return err
}

// Show waits for any in-flight save, drops a pending debounce and reloads
// everything from the server.
func (c *Coordinator) Show(ctx context.Context) error {
	if err := c.sched.Wait(ctx); err != nil {
		return fmt.Errorf("wait for save: %w", err)
	}
	if c.sched.Cancel() {
		c.logger.Debug("discarding pending edits on show")
	}
	return c.Reload(ctx)
}

// Reload replaces the document, its expiration and the attachment list with
// the server's copy.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.set(status.Loading, "")
	resp, err := c.remote.FetchContent(ctx)
	if err != nil {
		c.store.RecordError(err)
		c.flashError("Error loading")
		c.logger.Warn("content load failed", "error", err)
		return fmt.Errorf("load content: %w", err)
	}

	rev := c.store.ReplaceDocument(resp)
	c.logger.Debug("content loaded", "revision", rev, "bytes", len(resp.Content))
	if c.files != nil {
		if resp.HasAttachments() {
			c.files.Reconcile()
		} else if err := c.files.Load(ctx); err != nil {
			return err
		}
	}
	c.set(status.Idle, "")
	return nil
}

func (c *Coordinator) set(kind status.Kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
	c.status.Set(kind, message)
}

func (c *Coordinator) flashError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revert != nil {
		c.revert.Stop()
	}
	tok := c.status.Set(status.Error, message)
	c.revert = c.clock.AfterFunc(c.errShow, func() { c.status.RevertIfCurrent(tok) })
}
