package app

import (
	"context"
	"fmt"

	"github.com/five82/homeclip/internal/prefs"
	"github.com/five82/homeclip/internal/ui"
)

// Run boots the homeclip TUI until the user quits or the context is
// cancelled. Unsaved edits are flushed on the way out.
func Run(ctx context.Context, opts Options) (err error) {
	engine, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	// Resolve the theme before the TUI owns the terminal; the background
	// probe cannot run once the program is reading input.
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		engine.Logger.Warn("load prefs failed", "error", err)
	}
	theme := userPrefs.ResolveTheme(prefs.DetectDark)

	StartFileRefresher(ctx, engine.Files, nil, engine.Config.FilesRefresh, engine.Logger)

	return ui.Run(ui.Options{
		Context:     ctx,
		Server:      engine.Client.BaseURL(),
		Store:       engine.Store,
		Status:      engine.Status,
		Scheduler:   engine.Scheduler,
		Coordinator: engine.Coordinator,
		Files:       engine.Files,
		Countdowns:  engine.Countdowns,
		Changed:     engine.Changed(),
		DownloadDir: engine.Config.DownloadDir,
		ThemeName:   theme,
		PrefsPath:   opts.PrefsPath,
		Logger:      engine.Logger.With("component", "ui"),
	})
}
