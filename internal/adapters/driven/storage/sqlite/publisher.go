package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/logger"
)

// Verify interface compliance.
var _ driven.CatalogPublisher = (*Publisher)(nil)

// DefaultLockStaleAfter is the age at which an abandoned lock is reclaimed.
const DefaultLockStaleAfter = time.Hour

// PublishConflictError reports a publish lock held by another run.
type PublishConflictError struct {
	LockPath string
	Holder   string
}

func (e *PublishConflictError) Error() string {
	if e.Holder == "" {
		return fmt.Sprintf("publish lock %s is held", e.LockPath)
	}
	return fmt.Sprintf("publish lock %s is held by %s", e.LockPath, e.Holder)
}

// Unwrap allows errors.Is(err, domain.ErrPublishConflict).
func (e *PublishConflictError) Unwrap() error {
	return domain.ErrPublishConflict
}

// Publisher swaps finished builds into the published slot of a data directory.
type Publisher struct {
	dir        string
	staleAfter time.Duration

	// mu serialises publishes within the process; the lock file serialises
	// them across processes.
	mu sync.Mutex

	// beforeSwap runs after the backup is in place and before the rename.
	beforeSwap func() error
}

// NewPublisher creates a publisher for dir. A non-positive staleAfter uses
// DefaultLockStaleAfter.
func NewPublisher(dir string, staleAfter time.Duration) *Publisher {
	if staleAfter <= 0 {
		staleAfter = DefaultLockStaleAfter
	}
	return &Publisher{dir: dir, staleAfter: staleAfter}
}

// PublishedPath returns the published catalog location.
func (p *Publisher) PublishedPath() string {
	return filepath.Join(p.dir, PublishedName)
}

// BackupPath returns the backup catalog location.
func (p *Publisher) BackupPath() string {
	return filepath.Join(p.dir, BackupName)
}

func (p *Publisher) lockPath() string {
	return filepath.Join(p.dir, LockName)
}

// NewBuild creates an empty shadow catalog in the data directory.
func (p *Publisher) NewBuild(ctx context.Context) (driven.CatalogBuild, error) {
	return NewBuilder(ctx, p.dir)
}

// Publish finishes the build and atomically replaces the published catalog.
// The previous catalog becomes the backup. On any failure the published
// catalog is untouched and the build is removed.
func (p *Publisher) Publish(ctx context.Context, build driven.CatalogBuild) (err error) {
	b, ok := build.(*Builder)
	if !ok {
		return fmt.Errorf("%w: build was not created by this publisher", domain.ErrInvalidInput)
	}
	defer func() {
		if err != nil {
			if abortErr := b.Abort(); abortErr != nil {
				logger.Warn("sqlite: removing failed build %s: %v", b.Path(), abortErr)
			}
		}
	}()

	if filepath.Dir(b.Path()) != filepath.Clean(p.dir) {
		return fmt.Errorf("%w: build %s is outside %s", domain.ErrInvalidInput, b.Path(), p.dir)
	}

	if err := b.Finish(ctx); err != nil {
		return err
	}

	unlock, err := p.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.demote(); err != nil {
		return err
	}

	if p.beforeSwap != nil {
		if err := p.beforeSwap(); err != nil {
			return err
		}
	}

	if err := os.Rename(b.Path(), p.PublishedPath()); err != nil {
		return fmt.Errorf("publishing catalog: %w", err)
	}

	logger.Info("Published catalog with %d records to %s", b.Count(), p.PublishedPath())
	return nil
}

// demote replaces the backup with the current published file. The published
// path stays valid throughout because the backup is a hard link.
func (p *Publisher) demote() error {
	if err := os.Remove(p.BackupPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old backup: %w", err)
	}

	if _, err := os.Stat(p.PublishedPath()); os.IsNotExist(err) {
		return nil
	}

	if err := os.Link(p.PublishedPath(), p.BackupPath()); err != nil {
		logger.Debug("sqlite: hard link failed (%v), copying backup instead", err)
		if err := copyFile(p.PublishedPath(), p.BackupPath()); err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
	}
	return nil
}

// Rollback restores the backup generation as the published catalog.
func (p *Publisher) Rollback(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := os.Stat(p.BackupPath()); os.IsNotExist(err) {
		return domain.ErrNoBackup
	}

	unlock, err := p.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(p.BackupPath(), p.PublishedPath()); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}

	logger.Info("Restored previous catalog to %s", p.PublishedPath())
	return nil
}

// lock takes the in-process mutex and the cross-process lock file.
func (p *Publisher) lock() (func(), error) {
	p.mu.Lock()
	unlock, err := p.lockFile()
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	return func() {
		unlock()
		p.mu.Unlock()
	}, nil
}

// lockFile creates the lock file exclusively, reclaiming it once if stale.
func (p *Publisher) lockFile() (func(), error) {
	path := p.lockPath()
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			fmt.Fprintf(f, "pid %d at %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			return func() {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					logger.Warn("sqlite: releasing lock %s: %v", path, err)
				}
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}

		info, statErr := os.Stat(path)
		if attempt == 0 && statErr == nil && time.Since(info.ModTime()) > p.staleAfter {
			logger.Warn("sqlite: reclaiming stale lock %s (age %s)", path, time.Since(info.ModTime()).Round(time.Second))
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("removing stale lock: %w", err)
			}
			continue
		}
		if attempt == 0 && os.IsNotExist(statErr) {
			// Released between our create and stat.
			continue
		}

		holder, _ := os.ReadFile(path)
		return nil, &PublishConflictError{LockPath: path, Holder: strings.TrimSpace(string(holder))}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// removeStaleBuilds deletes temporary builds left behind by crashed runs.
func removeStaleBuilds(dir string, olderThan time.Duration) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var errs []error
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || time.Since(info.ModTime()) < olderThan {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cleanup removes abandoned temporary builds older than the lock staleness.
func (p *Publisher) Cleanup() error {
	return removeStaleBuilds(p.dir, p.staleAfter)
}
