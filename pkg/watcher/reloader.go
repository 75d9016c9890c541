package watcher

import (
	"context"
	"time"

	"github.com/ritzau/casegraph/pkg/logging"
)

// ReloadFunc re-reads persisted data, reporting whether anything changed
type ReloadFunc func(ctx context.Context) (bool, error)

// Config controls debouncing of data file changes
type Config struct {
	QuietPeriod time.Duration
	MaxWait     time.Duration
}

// DefaultConfig waits for saves to settle before reloading
func DefaultConfig() Config {
	return Config{QuietPeriod: 300 * time.Millisecond, MaxWait: 2 * time.Second}
}

// Watch observes path and calls reload whenever another process rewrites
// it. It returns once the watcher is running; watching stops with ctx.
func Watch(ctx context.Context, path string, cfg Config, reload ReloadFunc, siblings ...string) error {
	fw, err := NewFileWatcher(path, siblings...)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := NewDebouncer(fw.Events(), cfg.QuietPeriod, cfg.MaxWait)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			if !NeedsReload(event) {
				logging.Warn("data file removed, keeping cases in memory", "paths", len(event.Paths))
				continue
			}
			changed, err := reload(ctx)
			if err != nil {
				logging.Warn("failed to reload data file", "error", err)
				continue
			}
			if changed {
				logging.Debug("reload applied", "path", path)
			} else {
				logging.Debug("data file change matched memory")
			}
		}
	}()
	return nil
}
