package autosave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
	"github.com/five82/homeclip/internal/storetest"
)

type fixture struct {
	server *storetest.Server
	doc    *state.Store
	status *status.Controller
	clock  *clockwork.FakeClock
	sched  *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		server: storetest.New(t),
		doc:    &state.Store{},
		status: status.New(),
		clock:  clockwork.NewFakeClock(),
	}
	f.sched = New(f.server.Client(t), f.doc, f.status, Options{
		Clock:  f.clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(f.sched.Stop)
	return f
}

// edit mimics a keystroke on the editing surface.
func (f *fixture) edit(content string) {
	f.doc.SetContent(content)
	f.sched.NotifyEdit()
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitStarted(t *testing.T, s *storetest.Server) string {
	t.Helper()
	select {
	case body := <-s.SaveStarted():
		return body
	case <-time.After(3 * time.Second):
		t.Fatalf("save never reached the server")
		return ""
	}
}

func TestScheduler_DebounceCoalescesBurst(t *testing.T) {
	f := newFixture(t)

	for _, content := range []string{"h", "he", "hel", "hell", "hello"} {
		f.edit(content)
		if got := f.status.Snapshot().Kind; got != status.Typing {
			t.Fatalf("status = %v, want typing", got)
		}
		f.clock.Advance(100 * time.Millisecond)
	}

	f.clock.Advance(DefaultDelay - 101*time.Millisecond)
	if n := len(f.server.Saves()); n != 0 {
		t.Fatalf("saves before quiet period = %d, want 0", n)
	}
	if !f.sched.Pending() {
		t.Fatalf("timer should still be pending")
	}

	f.clock.Advance(time.Millisecond)
	eventually(t, "one save", func() bool { return len(f.server.Saves()) == 1 })

	time.Sleep(20 * time.Millisecond)
	saves := f.server.Saves()
	if len(saves) != 1 || saves[0] != "hello" {
		t.Fatalf("saves = %q, want exactly [hello]", saves)
	}
}

func TestScheduler_StatusCycleOnSuccess(t *testing.T) {
	f := newFixture(t)

	f.edit("note")
	f.clock.Advance(DefaultDelay)
	eventually(t, "saved status", func() bool { return f.status.Snapshot().Kind == status.Success })
	f.sched.Pending() // finish holds the scheduler lock until the revert timer exists

	snap := f.status.Snapshot()
	if snap.Text != "Saved" || snap.Class != status.ClassSaved {
		t.Fatalf("status = %#v, want Saved/saved", snap)
	}
	if f.doc.Dirty() {
		t.Fatalf("document should be clean after a successful save")
	}

	f.clock.Advance(DefaultSuccessDisplay - time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if f.status.Snapshot().Kind != status.Success {
		t.Fatalf("status reverted too early")
	}
	f.clock.Advance(time.Millisecond)
	eventually(t, "idle status", func() bool { return f.status.Snapshot().Kind == status.Idle })
}

func TestScheduler_StatusCycleOnFailure(t *testing.T) {
	f := newFixture(t)
	f.server.FailSaves(http.StatusInternalServerError)

	f.doc.SetContent("x")
	err := f.sched.Flush(context.Background())
	if err == nil {
		t.Fatalf("Flush returned nil error, want failure")
	}
	snap := f.status.Snapshot()
	if snap.Kind != status.Error || snap.Text != "Error saving" || snap.Class != status.ClassError {
		t.Fatalf("status = %#v, want Error saving", snap)
	}
	if !f.doc.Dirty() {
		t.Fatalf("failed save should leave the document dirty")
	}
	if f.sched.InFlight() {
		t.Fatalf("guard should be released after a failed save")
	}

	f.clock.Advance(DefaultSuccessDisplay)
	time.Sleep(10 * time.Millisecond)
	if f.status.Snapshot().Kind != status.Error {
		t.Fatalf("error status should outlive the success display window")
	}
	f.clock.Advance(DefaultErrorDisplay - DefaultSuccessDisplay)
	eventually(t, "idle status", func() bool { return f.status.Snapshot().Kind == status.Idle })

	// No retry: nothing else was sent.
	if f.sched.Pending() {
		t.Fatalf("a failed save must not be rescheduled")
	}
}

func TestScheduler_GuardDropsConcurrentFlush(t *testing.T) {
	f := newFixture(t)
	release := f.server.HoldSaves()
	defer release()

	f.doc.SetContent("first")
	done := make(chan error, 1)
	go func() { done <- f.sched.Flush(context.Background()) }()
	if body := waitStarted(t, f.server); body != "first" {
		t.Fatalf("held save = %q, want first", body)
	}

	if err := f.sched.Flush(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Flush = %v, want ErrInFlight", err)
	}
	if err := f.sched.FlushSync(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("FlushSync = %v, want ErrInFlight", err)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("first Flush returned error: %v", err)
	}
	if got := f.server.MaxInFlight(); got != 1 {
		t.Fatalf("MaxInFlight = %d, want 1", got)
	}
	if saves := f.server.Saves(); len(saves) != 1 {
		t.Fatalf("saves = %q, want one", saves)
	}
}

func TestScheduler_AtMostOneSaveInFlightUnderContention(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if (i+j)%3 == 0 {
					f.edit(string(rune('a' + i)))
				}
				_ = f.sched.Flush(context.Background())
				if j%4 == 0 {
					_ = f.sched.FlushSync(context.Background())
				}
			}
		}(i)
	}
	wg.Wait()

	if got := f.server.MaxInFlight(); got != 1 {
		t.Fatalf("MaxInFlight = %d, want 1", got)
	}
	if f.sched.InFlight() {
		t.Fatalf("guard still held after all flushes returned")
	}
}

func TestScheduler_RearmsWhenTrailingFireWasDropped(t *testing.T) {
	f := newFixture(t)
	release := f.server.HoldSaves()
	defer release()

	f.doc.SetContent("v1")
	done := make(chan error, 1)
	go func() { done <- f.sched.Flush(context.Background()) }()
	waitStarted(t, f.server)

	// The user keeps typing and the debounce expires while v1 is in flight.
	f.edit("v2")
	f.clock.Advance(DefaultDelay)
	eventually(t, "dropped fire", func() bool { return !f.sched.Pending() })
	if f.status.Snapshot().Kind != status.Typing {
		t.Fatalf("status = %v, want typing while the edit is unsaved", f.status.Snapshot().Kind)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if !f.sched.Pending() {
		t.Fatalf("scheduler should re-arm for the stranded edit")
	}

	f.clock.Advance(DefaultDelay)
	eventually(t, "trailing save", func() bool { return len(f.server.Saves()) == 2 })
	if saves := f.server.Saves(); saves[1] != "v2" {
		t.Fatalf("saves = %q, want trailing v2", saves)
	}
}

func TestScheduler_StaleCompletionKeepsTypingStatus(t *testing.T) {
	f := newFixture(t)
	release := f.server.HoldSaves()
	defer release()

	f.doc.SetContent("old")
	done := make(chan error, 1)
	go func() { done <- f.sched.Flush(context.Background()) }()
	waitStarted(t, f.server)

	f.edit("newer")
	release()
	<-done

	if got := f.status.Snapshot().Kind; got != status.Typing {
		t.Fatalf("status = %v, a stale completion must not replace typing", got)
	}
	if !f.doc.Dirty() {
		t.Fatalf("newer edit should still be dirty")
	}
}

type panicSaver struct{ calls int }

func (p *panicSaver) SaveContent(ctx context.Context, content string) error {
	p.calls++
	if p.calls == 1 {
		panic("boom")
	}
	return nil
}

func TestScheduler_GuardReleasedWhenSaverPanics(t *testing.T) {
	doc := &state.Store{}
	st := status.New()
	saver := &panicSaver{}
	sched := New(saver, doc, st, Options{Clock: clockwork.NewFakeClock(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	defer sched.Stop()

	doc.SetContent("x")
	if err := sched.Flush(context.Background()); err == nil {
		t.Fatalf("Flush should report the panic as an error")
	}
	if sched.InFlight() {
		t.Fatalf("guard still held after panic")
	}
	if st.Snapshot().Kind != status.Error {
		t.Fatalf("status = %v, want error", st.Snapshot().Kind)
	}
	if err := sched.Flush(context.Background()); err != nil {
		t.Fatalf("Flush after panic returned %v", err)
	}
	if saver.calls != 2 {
		t.Fatalf("saver calls = %d, want 2", saver.calls)
	}
}

func TestScheduler_FlushSyncCancelsPendingTimer(t *testing.T) {
	f := newFixture(t)

	f.edit("draft")
	if !f.sched.Pending() {
		t.Fatalf("edit should arm the timer")
	}
	if err := f.sched.FlushSync(context.Background()); err != nil {
		t.Fatalf("FlushSync returned error: %v", err)
	}
	if f.sched.Pending() {
		t.Fatalf("FlushSync should cancel the pending timer")
	}

	f.clock.Advance(DefaultDelay * 2)
	time.Sleep(20 * time.Millisecond)
	if saves := f.server.Saves(); len(saves) != 1 || saves[0] != "draft" {
		t.Fatalf("saves = %q, want exactly [draft]", saves)
	}
}

func TestScheduler_StopIgnoresEdits(t *testing.T) {
	f := newFixture(t)
	f.sched.Stop()

	f.edit("ignored")
	if f.sched.Pending() {
		t.Fatalf("stopped scheduler armed a timer")
	}
	if f.status.Snapshot().Kind != status.Idle {
		t.Fatalf("stopped scheduler changed status")
	}
}

func TestScheduler_WaitReturnsAfterInFlightSave(t *testing.T) {
	f := newFixture(t)
	if err := f.sched.Wait(context.Background()); err != nil {
		t.Fatalf("Wait with nothing in flight returned %v", err)
	}

	release := f.server.HoldSaves()
	f.doc.SetContent("x")
	go func() { _ = f.sched.Flush(context.Background()) }()
	waitStarted(t, f.server)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := f.sched.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded while held", err)
	}

	release()
	if err := f.sched.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if f.sched.InFlight() {
		t.Fatalf("InFlight after Wait")
	}
}

func TestScheduler_EditIgnoresIdenticalContent(t *testing.T) {
	f := newFixture(t)

	rev, changed := f.sched.Edit("a")
	if !changed || rev != 1 {
		t.Fatalf("Edit = (%d, %v), want (1, true)", rev, changed)
	}
	if _, changed := f.sched.Edit("a"); changed {
		t.Fatal("identical content counted as an edit")
	}
	if !f.sched.Pending() {
		t.Fatal("edit did not arm the debounce timer")
	}
}

func TestScheduler_UnsentTracksAttemptedRevision(t *testing.T) {
	f := newFixture(t)
	if f.sched.Unsent() {
		t.Fatal("empty document reported unsent")
	}

	f.sched.Edit("draft")
	if !f.sched.Unsent() {
		t.Fatal("fresh edit not reported unsent")
	}

	f.server.FailSaves(http.StatusServiceUnavailable)
	if err := f.sched.FlushSync(context.Background()); err == nil {
		t.Fatal("expected the save to fail")
	}
	if !f.doc.Dirty() {
		t.Fatal("failed save marked the document saved")
	}
	if f.sched.Unsent() {
		t.Fatal("revision handed to a failed save still reported unsent")
	}

	f.sched.Edit("draft 2")
	if !f.sched.Unsent() {
		t.Fatal("edit after a failed save not reported unsent")
	}
}
