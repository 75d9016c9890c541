package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/casegraph/pkg/logging"
)

// batchWindow groups the burst of events one save produces (temp file,
// rename, chmod) into a single ChangeEvent
const batchWindow = 100 * time.Millisecond

// ChangeEvent represents a batch of changes to the watched files
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the persisted data file for changes made by other
// processes. The parent directory is watched since atomic saves replace the
// file and a watch on the file itself would be lost.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	names   map[string]bool
	events  chan ChangeEvent
	stop    sync.Once
}

// NewFileWatcher creates a watcher for path. Extra sibling names (such as a
// SQLite write-ahead log) are watched too.
func NewFileWatcher(path string, siblings ...string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	names := map[string]bool{filepath.Base(abs): true}
	for _, s := range siblings {
		names[s] = true
	}

	return &FileWatcher{
		watcher: watcher,
		dir:     filepath.Dir(abs),
		names:   names,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching; events stop when ctx is cancelled
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}
	logging.Info("watching data file", "dir", fw.dir)

	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)

	pending := make(map[ChangeType][]string)
	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, t := range []ChangeType{ChangeTypeWrite, ChangeTypeRemove} {
			if paths := pending[t]; len(paths) > 0 {
				select {
				case fw.events <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}:
				case <-ctx.Done():
				}
			}
		}
		pending = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.names[filepath.Base(event.Name)] {
				continue
			}
			t, relevant := Classify(event.Op)
			if !relevant {
				continue
			}
			logging.Trace("data file event", "path", event.Name, "op", event.Op.String())
			pending[t] = append(pending[t], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stop.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
