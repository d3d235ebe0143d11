package mcp

// Test Plan for CatalogWatcher:
// 1. Creation fails on a missing directory
// 2. Catalogue writes trigger a debounced reload
// 3. A burst of writes collapses into one reload
// 4. Non-catalogue files in the same directory do not trigger reloads
// 5. A failed reload keeps the watcher running
// 6. Stop is idempotent and safe to call repeatedly
// 7. Context cancellation stops the event loop

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReloadable implements Reloadable interface for testing.
type mockReloadable struct {
	reloadCount atomic.Int32
	reloadErr   error
}

func (m *mockReloadable) Reload(ctx context.Context) error {
	m.reloadCount.Add(1)
	return m.reloadErr
}

func (m *mockReloadable) getReloadCount() int {
	return int(m.reloadCount.Load())
}

func newTestWatcher(t *testing.T, mock *mockReloadable, dir string) *CatalogWatcher {
	t.Helper()

	watcher, err := NewCatalogWatcher(mock, dir, quietLogger())
	require.NoError(t, err)
	watcher.debounceTime = 50 * time.Millisecond // keep tests fast
	t.Cleanup(watcher.Stop)
	return watcher
}

func writeCatalog(t *testing.T, dir string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(content), 0644))
}

func TestCatalogWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()

	mock := &mockReloadable{}
	watcher, err := NewCatalogWatcher(mock, filepath.Join(t.TempDir(), "missing"), quietLogger())

	require.Error(t, err)
	assert.Nil(t, watcher)
}

func TestCatalogWatcher_ReloadsOnCatalogWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, dir)

	watcher.Start(context.Background())
	writeCatalog(t, dir, `{"version":"1.0.0"}`)

	assert.Eventually(t, func() bool {
		return mock.getReloadCount() == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCatalogWatcher_DebouncesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, dir)

	watcher.Start(context.Background())
	for i := 0; i < 5; i++ {
		writeCatalog(t, dir, `{"version":"1.0.0"}`)
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return mock.getReloadCount() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	// Let any stray timers fire before checking the burst collapsed.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, mock.getReloadCount(), "burst should collapse into one reload")
}

func TestCatalogWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, dir)

	watcher.Start(context.Background())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("search:\n  limit: 5\n"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, mock.getReloadCount(), "config edits must not reload the catalogue")
}

func TestCatalogWatcher_KeepsRunningAfterFailedReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{reloadErr: errors.New("corrupt catalogue")}
	watcher := newTestWatcher(t, mock, dir)

	watcher.Start(context.Background())
	writeCatalog(t, dir, "{not json")

	assert.Eventually(t, func() bool {
		return mock.getReloadCount() == 1
	}, 3*time.Second, 20*time.Millisecond)

	// The watcher survives the failure and picks up the next write.
	writeCatalog(t, dir, `{"version":"1.0.0"}`)

	assert.Eventually(t, func() bool {
		return mock.getReloadCount() == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCatalogWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, dir)

	watcher.Start(context.Background())

	watcher.Stop()
	watcher.Stop() // Second call should not panic
}

func TestCatalogWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, t.TempDir())

	// Never started, Stop must not block on the event loop.
	watcher.Stop()
}

func TestCatalogWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := &mockReloadable{}
	watcher := newTestWatcher(t, mock, dir)

	ctx, cancel := context.WithCancel(context.Background())
	watcher.Start(ctx)
	cancel()

	// The loop exits on cancellation, so later writes go unnoticed.
	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, dir, `{"version":"1.0.0"}`)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, mock.getReloadCount())
}

func TestCatalogEvent_Filtering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		event string
		want  bool
	}{
		{"json catalogue", "/work/.lumen/catalog.json", true},
		{"sqlite catalogue", "/work/.lumen/catalog.db", true},
		{"sqlite journal", "/work/.lumen/catalog.db-journal", true},
		{"temp file", "/work/.lumen/catalog.json.tmp", true},
		{"config", "/work/.lumen/config.yml", false},
		{"dotenv", "/work/.lumen/.env", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event := fsnotify.Event{Name: tc.event, Op: fsnotify.Write}
			assert.Equal(t, tc.want, catalogEvent(event))
		})
	}

	chmod := fsnotify.Event{Name: "/work/.lumen/catalog.json", Op: fsnotify.Chmod}
	assert.False(t, catalogEvent(chmod), "chmod alone should not reload")
}
