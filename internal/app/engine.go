package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/five82/homeclip/internal/autosave"
	"github.com/five82/homeclip/internal/config"
	"github.com/five82/homeclip/internal/expiry"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/homeclip"
	"github.com/five82/homeclip/internal/logging"
	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
	"github.com/five82/homeclip/internal/visibility"
)

// unloadTimeout bounds the final flush at exit.
const unloadTimeout = 5 * time.Second

// Options configure the homeclip application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/homeclip/prefs.toml
	Server     string // overrides the configured server
	Debug      bool
	Clock      clockwork.Clock
}

// Engine wires the sync engine around one document.
type Engine struct {
	Config      config.Config
	Client      *homeclip.Client
	Store       *state.Store
	Status      *status.Controller
	Scheduler   *autosave.Scheduler
	Coordinator *visibility.Coordinator
	Files       *files.Registry
	Countdowns  *expiry.Countdowns
	Logger      *slog.Logger

	changed chan struct{}
	logSink io.Closer
}

var (
	_ autosave.Saver        = (*homeclip.Client)(nil)
	_ autosave.Document     = (*state.Store)(nil)
	_ visibility.Scheduler  = (*autosave.Scheduler)(nil)
	_ visibility.FileLoader = (*files.Registry)(nil)
	_ files.Remote          = (*homeclip.Client)(nil)
)

// Open loads the configuration, opens the log and builds an Engine.
func Open(opts Options) (*Engine, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if server := strings.TrimSpace(opts.Server); server != "" {
		cfg.Server = server
	}

	logger, sink, err := logging.New(logging.Options{Path: cfg.LogFile, Debug: opts.Debug})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	engine, err := NewEngine(cfg, logger, opts.Clock)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	engine.logSink = sink
	return engine, nil
}

// NewEngine builds an Engine from an already loaded configuration.
func NewEngine(cfg config.Config, logger *slog.Logger, clock clockwork.Clock) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client, err := homeclip.NewClient(cfg.Server, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("init homeclip client: %w", err)
	}

	e := &Engine{
		Config:  cfg,
		Client:  client,
		Store:   &state.Store{},
		Status:  status.New(),
		Logger:  logger,
		changed: make(chan struct{}, 1),
	}
	e.Status.Subscribe(func(status.Snapshot) { e.notify() })
	e.Countdowns = expiry.NewCountdowns(clock, func(string, string) { e.notify() })

	e.Scheduler = autosave.New(client, e.Store, e.Status, autosave.Options{
		Delay:  cfg.AutosaveDelay,
		Clock:  clock,
		Logger: logger.With("component", "autosave"),
	})
	e.Files = files.New(client, e.Store, e.Status, files.Options{
		Clock:      clock,
		Logger:     logger.With("component", "files"),
		Countdowns: e.Countdowns,
	})
	e.Coordinator = visibility.New(e.Scheduler, client, e.Store, e.Files, e.Status, visibility.Options{
		Clock:  clock,
		Logger: logger.With("component", "visibility"),
	})

	logger.Info("engine ready", "server", client.BaseURL(), "autosave_delay", cfg.AutosaveDelay)
	return e, nil
}

// Changed is signalled, coalesced, whenever the status or a countdown text
// changed. Renderers re-read snapshots when it fires.
func (e *Engine) Changed() <-chan struct{} {
	return e.changed
}

func (e *Engine) notify() {
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// Edit records new document content from the editing surface and notifies
// the scheduler when it actually changed.
func (e *Engine) Edit(content string) bool {
	_, changed := e.Scheduler.Edit(content)
	return changed
}

// Close flushes unsaved edits and stops every timer. It is safe to call
// more than once.
func (e *Engine) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer cancel()

	err := e.Coordinator.Unload(ctx)
	if err != nil && !errors.Is(err, autosave.ErrInFlight) {
		e.Logger.Warn("final save failed", "error", err)
	} else {
		err = nil
	}
	e.Scheduler.Stop()
	e.Countdowns.Stop()
	e.Logger.Info("engine closed")
	if e.logSink != nil {
		if cerr := e.logSink.Close(); cerr != nil && err == nil {
			err = cerr
		}
		e.logSink = nil
	}
	return err
}
