package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

func acquiredCount(lc *LiveCatalog) int {
	reader, release, err := lc.Acquire(context.Background())
	if err != nil {
		return -1
	}
	defer release()
	stats, err := reader.Stats(context.Background())
	if err != nil {
		return -1
	}
	return stats.Records
}

func TestLiveCatalog_NoCatalogYet(t *testing.T) {
	lc, err := NewLiveCatalog(t.TempDir())
	require.NoError(t, err)
	defer lc.Close()

	_, _, err = lc.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoCatalog)
	assert.ErrorIs(t, lc.Reload(), domain.ErrNoCatalog)
}

func TestLiveCatalog_OpensExisting(t *testing.T) {
	dir := t.TempDir()
	publish(t, NewPublisher(dir, 0), newRecord("a", "One"))

	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()

	assert.Equal(t, 1, acquiredCount(lc))
	assert.Equal(t, filepath.Join(dir, PublishedName), lc.Path())
}

func TestLiveCatalog_FollowsFirstPublish(t *testing.T) {
	dir := t.TempDir()
	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()

	publish(t, NewPublisher(dir, 0), newRecord("a", "One"), newRecord("b", "Two"))

	assert.Eventually(t, func() bool { return acquiredCount(lc) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveCatalog_SwapKeepsPinnedReaders(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := NewPublisher(dir, 0)
	publish(t, p, newRecord("a", "One"))

	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()

	pinned, release, err := lc.Acquire(ctx)
	require.NoError(t, err)

	publish(t, p, newRecord("a", "One"), newRecord("b", "Two"), newRecord("c", "Three"))
	require.Eventually(t, func() bool { return acquiredCount(lc) == 3 }, 2*time.Second, 10*time.Millisecond)

	// The pinned generation still answers.
	stats, err := pinned.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)

	release()
	release() // second call is a no-op

	// The retired generation is closed once its last reader is gone.
	_, err = pinned.Get(ctx, "a")
	assert.Error(t, err)
}

func TestLiveCatalog_ManualReload(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(dir, 0)
	publish(t, p, newRecord("a", "One"))

	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()

	// Reloading the same file keeps the current handle.
	reader, release, err := lc.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, lc.Reload())
	again, releaseAgain, err := lc.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, reader, again)
	release()
	releaseAgain()

	publish(t, p, newRecord("a", "One"), newRecord("b", "Two"))
	require.NoError(t, lc.Reload())
	assert.Equal(t, 2, acquiredCount(lc))
}

func TestLiveCatalog_FollowsRollback(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(dir, 0)
	publish(t, p, newRecord("a", "One"))
	publish(t, p, newRecord("a", "One"), newRecord("b", "Two"))

	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()
	require.Equal(t, 2, acquiredCount(lc))

	require.NoError(t, p.Rollback(context.Background()))
	assert.Eventually(t, func() bool { return acquiredCount(lc) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveCatalog_AcquireCancelled(t *testing.T) {
	lc, err := NewLiveCatalog(t.TempDir())
	require.NoError(t, err)
	defer lc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = lc.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLiveCatalog_Close(t *testing.T) {
	dir := t.TempDir()
	publish(t, NewPublisher(dir, 0), newRecord("a", "One"))

	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)

	require.NoError(t, lc.Close())
	require.NoError(t, lc.Close())

	_, _, err = lc.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoCatalog)
}

func TestLiveCatalog_HandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	lc := &LiveCatalog{dir: dir, path: filepath.Join(dir, PublishedName)}

	tests := []struct {
		name string
		file string
		op   fsnotify.Op
		want bool
	}{
		{"published created", PublishedName, fsnotify.Create, true},
		{"published renamed", PublishedName, fsnotify.Rename, true},
		{"published written", PublishedName, fsnotify.Write, true},
		{"published chmod", PublishedName, fsnotify.Chmod, false},
		{"published removed", PublishedName, fsnotify.Remove, false},
		{"backup created", BackupName, fsnotify.Create, false},
		{"temp build created", tempPrefix + "x", fsnotify.Create, false},
		{"lock created", LockName, fsnotify.Create, false},
		{"combined ops", PublishedName, fsnotify.Create | fsnotify.Chmod, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: filepath.Join(dir, tt.file), Op: tt.op}
			assert.Equal(t, tt.want, lc.handleFsEvent(event))
		})
	}
}

func TestNewLiveCatalog_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	lc, err := NewLiveCatalog(dir)
	require.NoError(t, err)
	defer lc.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
