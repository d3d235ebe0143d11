package mcp

// Implementation Plan:
// 1. Use fsnotify to watch the catalogue directory
// 2. Only catalogue files count; config edits next door must not reload
// 3. Debounce file system events (500ms)
// 4. Trigger reload on debounce timeout
// 5. Handle errors gracefully (keep old state on failure)
// 6. Thread-safe start/stop

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Reloadable is an interface for components that can be reloaded.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// CatalogWatcher watches the catalogue directory for changes and triggers
// a reload once writes settle.
type CatalogWatcher struct {
	reloadable   Reloadable
	watcher      *fsnotify.Watcher
	logger       *logrus.Logger
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	started      atomic.Bool
	stopOnce     sync.Once
}

// NewCatalogWatcher creates a new watcher over the directory holding the
// catalogue.
func NewCatalogWatcher(reloadable Reloadable, watchDir string, logger *logrus.Logger) (*CatalogWatcher, error) {
	if logger == nil {
		logger = logrus.New()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(watchDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &CatalogWatcher{
		reloadable:   reloadable,
		watcher:      watcher,
		logger:       logger,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching for catalogue changes. Calling it twice is a no-op.
func (cw *CatalogWatcher) Start(ctx context.Context) {
	if !cw.started.CompareAndSwap(false, true) {
		return
	}
	go cw.watch(ctx)
}

// Stop stops the watcher. Safe to call before Start and more than once.
func (cw *CatalogWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		if cw.started.Load() {
			<-cw.doneCh // Wait for goroutine to finish
		}
		cw.watcher.Close()
	})
}

// catalogEvent reports whether the event touches a catalogue file. Covers
// catalog.json, catalog.db and the journal/temp files written around them.
func catalogEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), "catalog.")
}

// watch is the main event loop with debouncing logic.
func (cw *CatalogWatcher) watch(ctx context.Context) {
	defer close(cw.doneCh)

	var debounceTimer *time.Timer
	reloadCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-cw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if catalogEvent(event) {
				// Reset debounce timer - properly stop and drain
				if debounceTimer != nil {
					if !debounceTimer.Stop() {
						select {
						case <-debounceTimer.C:
						default:
						}
					}
				}
				debounceTimer = time.AfterFunc(cw.debounceTime, func() {
					// Send reload signal (non-blocking)
					select {
					case reloadCh <- struct{}{}:
					default:
					}
				})
			}

		case <-reloadCh:
			cw.triggerReload(ctx)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.WithError(err).Warn("catalogue watcher error")
		}
	}
}

// triggerReload executes a reload of the reloadable component.
func (cw *CatalogWatcher) triggerReload(ctx context.Context) {
	cw.logger.Info("catalogue changed, reloading")
	start := time.Now()

	if err := cw.reloadable.Reload(ctx); err != nil {
		cw.logger.WithError(err).Warn("catalogue reload failed, keeping old state")
		return
	}

	cw.logger.WithField("took", time.Since(start)).Info("catalogue reloaded")
}
