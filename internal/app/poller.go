package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// FileLoader reloads the attachment list.
type FileLoader interface {
	Load(ctx context.Context) error
}

// StartFileRefresher launches a background goroutine that reconciles the
// file list at a fixed cadence so uploads from other sessions show up. A
// non-positive interval disables it. It returns immediately.
func StartFileRefresher(ctx context.Context, loader FileLoader, clock clockwork.Clock, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := clock.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
			}
			if err := loader.Load(ctx); err != nil && ctx.Err() == nil {
				logger.Debug("periodic file refresh failed", "error", err)
			}
		}
	}()
}
