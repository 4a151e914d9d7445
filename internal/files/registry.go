package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/expiry"
	"github.com/five82/homeclip/internal/homeclip"
	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
)

// DefaultDisplay is how long upload, delete and download outcomes stay on the
// status line.
const DefaultDisplay = 2 * time.Second

// ErrDeclined is returned by Delete when the confirmation gate said no.
var ErrDeclined = errors.New("delete not confirmed")

// Remote is the subset of homeclip.Store the registry uses.
type Remote interface {
	ListFiles(ctx context.Context) ([]homeclip.Attachment, error)
	UploadFile(ctx context.Context, fileName string, body io.Reader) (*homeclip.Attachment, error)
	DownloadFile(ctx context.Context, id string, dst io.Writer) (int64, error)
	DeleteFile(ctx context.Context, id string) error
}

// Confirmer is the yes/no gate in front of Delete.
type Confirmer interface {
	Confirm(ctx context.Context, file homeclip.Attachment) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, file homeclip.Attachment) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, file homeclip.Attachment) (bool, error) {
	return f(ctx, file)
}

// Approve is a Confirmer that always says yes, for callers that already asked.
var Approve Confirmer = ConfirmFunc(func(context.Context, homeclip.Attachment) (bool, error) {
	return true, nil
})

// Options configure a Registry. Zero values use the defaults.
type Options struct {
	Display    time.Duration
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Countdowns *expiry.Countdowns
}

// Registry keeps the local attachment list reconciled with the server.
type Registry struct {
	remote     Remote
	store      *state.Store
	status     *status.Controller
	clock      clockwork.Clock
	logger     *slog.Logger
	display    time.Duration
	countdowns *expiry.Countdowns

	mu     sync.Mutex
	revert clockwork.Timer
}

// New builds a Registry backed by store.
func New(remote Remote, store *state.Store, st *status.Controller, opts Options) *Registry {
	r := &Registry{
		remote:     remote,
		store:      store,
		status:     st,
		clock:      opts.Clock,
		logger:     opts.Logger,
		display:    opts.Display,
		countdowns: opts.Countdowns,
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.display <= 0 {
		r.display = DefaultDisplay
	}
	return r
}

// Files returns the attachment list in server order.
func (r *Registry) Files() []homeclip.Attachment {
	return r.store.Files()
}

// Attachment looks up a file by ID.
func (r *Registry) Attachment(id string) (homeclip.Attachment, bool) {
	for _, f := range r.store.Files() {
		if f.ID == id {
			return f, true
		}
	}
	return homeclip.Attachment{}, false
}

// Load fetches the file list and replaces the local one wholesale. On failure
// the previous list is kept and "Error loading" is shown.
func (r *Registry) Load(ctx context.Context) error {
	list, err := r.remote.ListFiles(ctx)
	if err != nil {
		r.store.RecordError(err)
		r.flash(status.Error, "Error loading")
		r.logger.Warn("file list load failed", "error", err)
		return fmt.Errorf("load files: %w", err)
	}
	r.store.ReplaceFiles(list)
	r.Reconcile()
	r.logger.Debug("file list loaded", "count", len(list))
	return nil
}

// Reconcile restarts the expiration countdowns from the current snapshot.
func (r *Registry) Reconcile() {
	if r.countdowns == nil {
		return
	}
	r.countdowns.Reconcile(Targets(r.store.Snapshot()))
}

// Targets lists every displayed expiration: the document under
// expiry.DocumentKey and each expiring file under its ID.
func Targets(snap state.Snapshot) map[string]time.Time {
	targets := make(map[string]time.Time, len(snap.Files)+1)
	if snap.ExpiresAt != nil {
		targets[expiry.DocumentKey] = *snap.ExpiresAt
	}
	for _, f := range snap.Files {
		if f.ExpiresAt != nil {
			targets[f.ID] = *f.ExpiresAt
		}
	}
	return targets
}

// Upload sends each path in order, one at a time. A failed file is reported
// and the batch continues. The list is reloaded if anything was uploaded.
// The returned error joins every per-file failure.
func (r *Registry) Upload(ctx context.Context, paths ...string) ([]homeclip.Attachment, error) {
	var (
		uploaded []homeclip.Attachment
		errs     []error
	)
	for _, path := range paths {
		name := filepath.Base(path)
		r.set(status.Saving, fmt.Sprintf("Uploading %s...", name))

		att, err := r.uploadOne(ctx, path, name)
		if err != nil {
			r.set(status.Error, "Upload failed: "+homeclip.Describe(err))
			r.logger.Warn("upload failed", "file", name, "error", err)
			errs = append(errs, fmt.Errorf("upload %s: %w", name, err))
			continue
		}
		uploaded = append(uploaded, *att)
		r.set(status.Success, "File uploaded")
		r.logger.Info("file uploaded", "file", name, "id", att.ID, "size", att.Size)
	}

	if len(uploaded) > 0 {
		if err := r.Load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.fadeCurrent()
	return uploaded, errors.Join(errs...)
}

func (r *Registry) uploadOne(ctx context.Context, path, name string) (*homeclip.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.remote.UploadFile(ctx, name, f)
}

// Delete removes a file after confirm says yes. A declined confirmation
// returns ErrDeclined without touching the server or the list.
func (r *Registry) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil {
		return ErrDeclined
	}
	file, ok := r.Attachment(id)
	if !ok {
		file = homeclip.Attachment{ID: id}
	}
	yes, err := confirm.Confirm(ctx, file)
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !yes {
		return ErrDeclined
	}

	r.set(status.Saving, "Deleting...")
	if err := r.remote.DeleteFile(ctx, id); err != nil {
		r.flash(status.Error, "Delete failed: "+homeclip.Describe(err))
		r.logger.Warn("delete failed", "id", id, "error", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	r.logger.Info("file deleted", "id", id, "file", file.FileName)
	r.set(status.Success, "File deleted")
	err = r.Load(ctx)
	r.fadeCurrent()
	return err
}

// Download saves a file into dir under fileName and returns the written
// path. An existing file is never overwritten; a numbered name is chosen
// instead.
func (r *Registry) Download(ctx context.Context, id, fileName, dir string) (string, error) {
	path, err := r.download(ctx, id, fileName, dir)
	if err != nil {
		r.flash(status.Error, "Download failed")
		r.logger.Warn("download failed", "id", id, "error", err)
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	r.flash(status.Success, "Downloaded "+filepath.Base(path))
	r.logger.Info("file downloaded", "id", id, "path", path)
	return path, nil
}

func (r *Registry) download(ctx context.Context, id, fileName, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := createUnique(dir, safeName(fileName, id))
	if err != nil {
		return "", err
	}
	if _, err := r.remote.DownloadFile(ctx, id, f); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func safeName(fileName, id string) string {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return id
	}
	return name
}

func createUnique(dir, name string) (*os.File, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) || i > 999 {
			return nil, err
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
}

// set shows an intermediate status without a revert.
func (r *Registry) set(kind status.Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopRevertLocked()
	r.status.Set(kind, message)
}

// flash shows a status that fades back to idle after the display window.
func (r *Registry) flash(kind status.Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopRevertLocked()
	tok := r.status.Set(kind, message)
	r.armRevertLocked(tok)
}

// fadeCurrent schedules a revert of whatever the status is now, unless
// something else changes it first.
func (r *Registry) fadeCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopRevertLocked()
	r.armRevertLocked(r.status.Snapshot().Token)
}

func (r *Registry) armRevertLocked(tok status.Token) {
	r.revert = r.clock.AfterFunc(r.display, func() { r.status.RevertIfCurrent(tok) })
}

func (r *Registry) stopRevertLocked() {
	if r.revert != nil {
		r.revert.Stop()
		r.revert = nil
	}
}
