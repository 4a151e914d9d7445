package visibility

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/autosave"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
	"github.com/five82/homeclip/internal/storetest"
)

type fixture struct {
	server *storetest.Server
	store  *state.Store
	status *status.Controller
	clock  *clockwork.FakeClock
	sched  *autosave.Scheduler
	coord  *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		server: storetest.New(t),
		store:  &state.Store{},
		status: status.New(),
		clock:  clockwork.NewFakeClock(),
	}
	client := f.server.Client(t)
	f.sched = autosave.New(client, f.store, f.status, autosave.Options{Clock: f.clock, Logger: logger})
	t.Cleanup(f.sched.Stop)
	reg := files.New(client, f.store, f.status, files.Options{Clock: f.clock, Logger: logger})
	f.coord = New(f.sched, client, f.store, reg, f.status, Options{Clock: f.clock, Logger: logger})
	return f
}

func (f *fixture) edit(content string) {
	f.store.SetContent(content)
	f.sched.NotifyEdit()
}

func TestHideFlushesPendingSaveBeforeReturning(t *testing.T) {
	f := newFixture(t)
	f.edit("draft")
	f.edit("draft v2")

	if err := f.coord.Hide(context.Background()); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	saves := f.server.Saves()
	if len(saves) != 1 || saves[0] != "draft v2" {
		t.Fatalf("saves = %q, want [draft v2] before Hide returned", saves)
	}
	if f.sched.Pending() {
		t.Fatalf("timer still pending after Hide")
	}

	f.clock.Advance(autosave.DefaultDelay)
	time.Sleep(20 * time.Millisecond)
	if n := len(f.server.Saves()); n != 1 {
		t.Fatalf("saves = %d, cancelled timer must not fire", n)
	}
}

func TestHideWithoutPendingTimerSendsNothing(t *testing.T) {
	f := newFixture(t)
	if err := f.coord.Hide(context.Background()); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if n := f.server.Requests("POST /api/content"); n != 0 {
		t.Fatalf("save requests = %d, want 0", n)
	}
}

func TestUnloadDoesNotRetryFailedSave(t *testing.T) {
	f := newFixture(t)
	f.server.FailSaves(http.StatusServiceUnavailable)
	f.store.SetContent("unsent")
	if err := f.sched.Flush(context.Background()); err == nil {
		t.Fatal("expected the save to fail")
	}

	f.server.FailSaves(0)
	if err := f.coord.Unload(context.Background()); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if n := f.server.Requests("POST /api/content"); n != 1 {
		t.Fatalf("save requests = %d, want 1 (failed save must not be retried)", n)
	}
}

func TestUnloadSendsEditsNewerThanFailedSave(t *testing.T) {
	f := newFixture(t)
	f.server.FailSaves(http.StatusServiceUnavailable)
	f.store.SetContent("first")
	_ = f.sched.Flush(context.Background())

	f.server.FailSaves(0)
	f.store.SetContent("first, then more")
	if err := f.coord.Unload(context.Background()); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if got := f.server.Content(); got != "first, then more" {
		t.Fatalf("server content = %q, want newer edits delivered at exit", got)
	}
	if f.store.Dirty() {
		t.Fatalf("document still dirty after Unload")
	}
}

func TestUnloadRunsOnce(t *testing.T) {
	f := newFixture(t)
	f.edit("bye")

	for i := 0; i < 2; i++ {
		if err := f.coord.Unload(context.Background()); err != nil {
			t.Fatalf("Unload #%d: %v", i+1, err)
		}
	}
	if n := f.server.Requests("POST /api/content"); n != 1 {
		t.Fatalf("save requests = %d, want 1", n)
	}

	f.edit("after exit")
	if err := f.coord.Unload(context.Background()); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if n := f.server.Requests("POST /api/content"); n != 1 {
		t.Fatalf("save requests = %d after a repeated Unload", n)
	}
}

func TestShowOverwritesUnsentEdits(t *testing.T) {
	f := newFixture(t)
	f.server.SetContent("from another session")
	f.server.AddFile("shared.txt", []byte("x"), nil)
	f.edit("local only")

	if err := f.coord.Show(context.Background()); err != nil {
		t.Fatalf("Show: %v", err)
	}
	content, _ := f.store.Document()
	if content != "from another session" {
		t.Fatalf("content = %q, want server copy", content)
	}
	if f.store.Dirty() {
		t.Fatalf("reloaded document should be clean")
	}
	if f.sched.Pending() {
		t.Fatalf("pending edit timer should be discarded on show")
	}
	if n := f.server.Requests("POST /api/content"); n != 0 {
		t.Fatalf("unsent edits were saved (%d requests)", n)
	}
	if list := f.store.Files(); len(list) != 1 || list[0].FileName != "shared.txt" {
		t.Fatalf("files = %v, want server list", list)
	}
	if snap := f.status.Snapshot(); snap.Kind != status.Idle || snap.Text != "Ready" {
		t.Fatalf("status = %#v, want Ready", snap)
	}
}

func TestShowWaitsForInFlightSave(t *testing.T) {
	f := newFixture(t)
	release := f.server.HoldSaves()
	defer release()

	f.store.SetContent("in flight")
	go func() { _ = f.sched.Flush(context.Background()) }()
	select {
	case <-f.server.SaveStarted():
	case <-time.After(3 * time.Second):
		t.Fatalf("save never started")
	}

	shown := make(chan error, 1)
	go func() { shown <- f.coord.Show(context.Background()) }()
	select {
	case <-shown:
		t.Fatalf("Show returned while a save was in flight")
	case <-time.After(30 * time.Millisecond):
	}
	if n := f.server.Requests("GET /api/content"); n != 0 {
		t.Fatalf("reload issued before the in-flight save finished")
	}

	release()
	if err := <-shown; err != nil {
		t.Fatalf("Show: %v", err)
	}
	content, _ := f.store.Document()
	if content != "in flight" {
		t.Fatalf("content = %q, want the saved document read back", content)
	}
}

func TestReloadFailureKeepsLocalContent(t *testing.T) {
	f := newFixture(t)
	f.store.SetContent("local")
	f.server.SetContent("remote")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.coord.Reload(ctx); err == nil {
		t.Fatalf("Reload with cancelled context succeeded")
	}
	content, _ := f.store.Document()
	if content != "local" {
		t.Fatalf("content = %q, want local kept on failure", content)
	}
	snap := f.status.Snapshot()
	if snap.Kind != status.Error || snap.Text != "Error loading" {
		t.Fatalf("status = %#v, want Error loading", snap)
	}
}
