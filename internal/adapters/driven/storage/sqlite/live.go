package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/logger"
)

// Verify interface compliance.
var _ driven.CatalogSource = (*LiveCatalog)(nil)

// handle is one opened catalog generation shared by concurrent readers.
type handle struct {
	reader  *Reader
	info    os.FileInfo
	refs    atomic.Int64
	retired atomic.Bool
	once    sync.Once
}

func (h *handle) release() {
	if h.refs.Add(-1) == 0 && h.retired.Load() {
		h.close()
	}
}

func (h *handle) retire() {
	h.retired.Store(true)
	if h.refs.Load() == 0 {
		h.close()
	}
}

func (h *handle) close() {
	h.once.Do(func() {
		if err := h.reader.Close(); err != nil {
			logger.Warn("sqlite: closing catalog %s: %v", h.reader.Path(), err)
		}
	})
}

// LiveCatalog serves the currently published catalog and follows new
// publications. A reader acquired before a swap keeps using its generation
// until it is released.
type LiveCatalog struct {
	dir  string
	path string

	mu      sync.RWMutex
	current *handle

	reloadMu sync.Mutex

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewLiveCatalog opens the catalog published in dir, if any, and watches dir
// for new publications. A missing catalog is not an error; Acquire reports
// domain.ErrNoCatalog until one appears.
func NewLiveCatalog(dir string) (*LiveCatalog, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	lc := &LiveCatalog{
		dir:  dir,
		path: filepath.Join(dir, PublishedName),
		done: make(chan struct{}),
	}

	if err := lc.Reload(); err != nil && !errors.Is(err, domain.ErrNoCatalog) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		lc.Close()
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		lc.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	lc.watcher = watcher

	lc.wg.Add(1)
	go lc.watch()

	return lc, nil
}

// Path returns the published catalog location.
func (lc *LiveCatalog) Path() string {
	return lc.path
}

// Acquire pins the current generation.
func (lc *LiveCatalog) Acquire(ctx context.Context) (driven.CatalogReader, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	lc.mu.RLock()
	defer lc.mu.RUnlock()

	h := lc.current
	if h == nil {
		return nil, nil, domain.ErrNoCatalog
	}
	h.refs.Add(1)
	return h.reader, sync.OnceFunc(h.release), nil
}

// Reload opens the published file and swaps it in if it differs from the
// generation being served. Returns domain.ErrNoCatalog if nothing is published.
func (lc *LiveCatalog) Reload() error {
	lc.reloadMu.Lock()
	defer lc.reloadMu.Unlock()

	info, err := os.Stat(lc.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNoCatalog
		}
		return fmt.Errorf("checking catalog: %w", err)
	}

	lc.mu.RLock()
	cur := lc.current
	lc.mu.RUnlock()
	if cur != nil && os.SameFile(cur.info, info) {
		return nil
	}

	reader, err := OpenReader(lc.path)
	if err != nil {
		return err
	}

	next := &handle{reader: reader, info: info}
	lc.mu.Lock()
	old := lc.current
	lc.current = next
	lc.mu.Unlock()

	if old != nil {
		old.retire()
	}
	logger.Info("Serving catalog %s", lc.path)
	return nil
}

// Close stops watching and closes the current generation once released.
func (lc *LiveCatalog) Close() error {
	var err error
	lc.closeOnce.Do(func() {
		close(lc.done)
		if lc.watcher != nil {
			err = lc.watcher.Close()
		}
		lc.wg.Wait()

		lc.mu.Lock()
		old := lc.current
		lc.current = nil
		lc.mu.Unlock()
		if old != nil {
			old.retire()
		}
	})
	return err
}

func (lc *LiveCatalog) watch() {
	defer lc.wg.Done()
	for {
		select {
		case <-lc.done:
			return
		case event, ok := <-lc.watcher.Events:
			if !ok {
				return
			}
			if !lc.handleFsEvent(event) {
				continue
			}
			if err := lc.Reload(); err != nil && !errors.Is(err, domain.ErrNoCatalog) {
				logger.Warn("sqlite: reloading catalog: %v", err)
			}
		case err, ok := <-lc.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("sqlite: watching %s: %v", lc.dir, err)
		}
	}
}

// handleFsEvent reports whether the event may have replaced the published file.
func (lc *LiveCatalog) handleFsEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != PublishedName {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)
}
