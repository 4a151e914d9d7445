package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/status"
)

// Default timings.
const (
	DefaultDelay          = 500 * time.Millisecond
	DefaultSuccessDisplay = 2 * time.Second
	DefaultErrorDisplay   = 3 * time.Second
)

// ErrInFlight is returned by Flush when the save was dropped because another
// save is still in flight.
var ErrInFlight = errors.New("save already in flight")

// Saver sends the full document to the remote store.
type Saver interface {
	SaveContent(ctx context.Context, content string) error
}

// Document is the editing surface's content as seen by the scheduler.
type Document interface {
	SetContent(content string) (revision uint64)
	Document() (content string, revision uint64)
	MarkSaved(revision uint64)
	Dirty() bool
}

// Options configure a Scheduler. Zero values use the defaults.
type Options struct {
	Delay          time.Duration
	SuccessDisplay time.Duration
	ErrorDisplay   time.Duration
	Clock          clockwork.Clock
	Logger         *slog.Logger
}

// Scheduler debounces edits into saves and guarantees that at most one save
// request is in flight.
type Scheduler struct {
	saver   Saver
	doc     Document
	status  *status.Controller
	clock   clockwork.Clock
	logger  *slog.Logger
	delay   time.Duration
	okShow  time.Duration
	errShow time.Duration

	mu         sync.Mutex
	timer      clockwork.Timer
	timerID    uint64
	revert     clockwork.Timer
	inFlight   bool
	done       chan struct{}
	generation uint64
	attempted  uint64 // last revision handed to the saver
	stopped    bool
}

// New builds a Scheduler.
func New(saver Saver, doc Document, st *status.Controller, opts Options) *Scheduler {
	s := &Scheduler{
		saver:   saver,
		doc:     doc,
		status:  st,
		clock:   opts.Clock,
		logger:  opts.Logger,
		delay:   opts.Delay,
		okShow:  opts.SuccessDisplay,
		errShow: opts.ErrorDisplay,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.okShow <= 0 {
		s.okShow = DefaultSuccessDisplay
	}
	if s.errShow <= 0 {
		s.errShow = DefaultErrorDisplay
	}
	return s
}

// Edit records content from an editing surface and re-arms the debounce
// timer. Content identical to the current document is not an edit; the
// returned bool reports whether a new revision was created.
func (s *Scheduler) Edit(content string) (uint64, bool) {
	_, before := s.doc.Document()
	rev := s.doc.SetContent(content)
	if rev == before {
		return rev, false
	}
	s.NotifyEdit()
	return rev, true
}

// NotifyEdit is called on every content mutation. It re-arms the debounce
// timer and shows the typing status.
func (s *Scheduler) NotifyEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.generation++
	s.armLocked()
	s.status.Set(status.Typing, "")
}

// Flush saves the current document immediately. When a save is already in
// flight the call is dropped and ErrInFlight is returned; the in-flight save
// re-arms the timer on completion if it left edits behind.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Debug("save dropped", "reason", "in flight")
		return ErrInFlight
	}
	s.inFlight = true
	s.done = make(chan struct{})
	s.generation++
	gen := s.generation
	content, rev := s.doc.Document()
	s.attempted = rev
	s.status.Set(status.Saving, "")
	s.mu.Unlock()

	start := s.clock.Now()
	err := s.save(ctx, content)
	s.finish(gen, rev, err)

	if err != nil {
		s.logger.Warn("save failed", "revision", rev, "error", err)
		return fmt.Errorf("save content: %w", err)
	}
	s.logger.Debug("saved", "revision", rev, "bytes", len(content), "elapsed", s.clock.Since(start))
	return nil
}

// FlushSync cancels any pending debounce timer and flushes immediately.
func (s *Scheduler) FlushSync(ctx context.Context) error {
	s.Cancel()
	return s.Flush(ctx)
}

// Cancel stops the pending debounce timer, reporting whether one was armed.
// Edits it would have saved stay in the document.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked()
}

// Pending reports whether a debounce timer is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Unsent reports whether the document holds edits that no save has carried
// yet. A revision whose save failed counts as sent: failures are not retried.
func (s *Scheduler) Unsent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, rev := s.doc.Document()
	return rev > s.attempted && s.doc.Dirty()
}

// InFlight reports whether a save request is outstanding.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Wait blocks until no save is in flight or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	if !s.inFlight {
		s.mu.Unlock()
		return nil
	}
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels all timers. Later edits are ignored; an in-flight save still
// completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelLocked()
	if s.revert != nil {
		s.revert.Stop()
		s.revert = nil
	}
}

func (s *Scheduler) armLocked() {
	s.cancelLocked()
	s.timerID++
	id := s.timerID
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(id) })
}

func (s *Scheduler) cancelLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}

func (s *Scheduler) fire(id uint64) {
	s.mu.Lock()
	if s.stopped || s.timer == nil || id != s.timerID {
		// Cancelled or superseded after the timer already expired.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	_ = s.Flush(context.Background())
}

func (s *Scheduler) save(ctx context.Context, content string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("save panicked: %v", r)
		}
	}()
	return s.saver.SaveContent(ctx, content)
}

// finish releases the guard and applies the outcome. The status is only
// touched when no newer edit or attempt happened since gen was taken, or when
// nothing else is scheduled to update it.
func (s *Scheduler) finish(gen, rev uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	close(s.done)
	if err == nil {
		s.doc.MarkSaved(rev)
	}

	pending := s.timer != nil
	if err == nil && !pending && !s.stopped && s.doc.Dirty() {
		// A trailing debounce fire was dropped while this save was in flight.
		s.armLocked()
		return
	}
	if gen != s.generation && pending {
		return
	}

	if err != nil {
		s.flashLocked(status.Error, "Error saving", s.errShow)
		return
	}
	s.flashLocked(status.Success, "Saved", s.okShow)
}

func (s *Scheduler) flashLocked(kind status.Kind, message string, display time.Duration) {
	tok := s.status.Set(kind, message)
	if s.revert != nil {
		s.revert.Stop()
	}
	s.revert = s.clock.AfterFunc(display, func() { s.status.RevertIfCurrent(tok) })
}
