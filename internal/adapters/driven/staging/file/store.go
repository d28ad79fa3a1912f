// Package file stages raw documents in a local directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocat/internal/adapters/driven/staging"
	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.StagingStore = (*Store)(nil)
	_ driven.StagingRun   = (*Run)(nil)
)

// Directory layout under the staging root.
const (
	committedDir = "raw"
	incomingDir  = "incoming"
)

// ErrRunClosed indicates a run was used after Commit or Discard.
var ErrRunClosed = errors.New("staging: run already committed or discarded")

// Store stages documents under root/raw, with runs under root/incoming/<id>.
type Store struct {
	root string
}

// New creates a file staging store, creating its directories.
func New(root string) (*Store, error) {
	for _, dir := range []string{committedDir, incomingDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0700); err != nil {
			return nil, fmt.Errorf("create staging directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the staging root directory.
func (s *Store) Root() string {
	return s.root
}

// Begin opens a new run.
func (s *Store) Begin(_ context.Context) (driven.StagingRun, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.root, incomingDir, id)
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &Run{
		id:        id,
		dirSet:    dirSet{dir: dir},
		committed: filepath.Join(s.root, committedDir),
	}, nil
}

// Committed returns the committed documents.
func (s *Store) Committed(_ context.Context) (driven.StagedSet, error) {
	return &dirSet{dir: filepath.Join(s.root, committedDir)}, nil
}

// Run is one harvest's staging scope.
type Run struct {
	dirSet

	id        string
	committed string

	mu     sync.Mutex
	closed bool
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Put writes a document, replacing any earlier one with the same UUID.
func (r *Run) Put(_ context.Context, doc domain.RawDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunClosed
	}
	if doc.UUID == "" {
		return fmt.Errorf("%w: document without uuid", domain.ErrInvalidInput)
	}
	return writeAtomic(filepath.Join(r.dir, staging.ObjectName(doc.UUID)), doc.Content)
}

// Commit moves the run's documents into the committed set.
func (r *Run) Commit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunClosed
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read run directory: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := staging.UUIDFromName(e.Name()); !ok || e.IsDir() {
			continue
		}
		if err := os.Rename(filepath.Join(r.dir, e.Name()), filepath.Join(r.committed, e.Name())); err != nil {
			return fmt.Errorf("commit %s: %w", e.Name(), err)
		}
	}

	r.closed = true
	return os.RemoveAll(r.dir)
}

// Discard removes the run's documents.
func (r *Run) Discard(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return os.RemoveAll(r.dir)
}

// dirSet reads staged documents from one directory.
type dirSet struct {
	dir string
}

// List returns the staged UUIDs in ascending order.
func (d *dirSet) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list staged documents: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := staging.UUIDFromName(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Get reads one staged document.
func (d *dirSet) Get(_ context.Context, id string) (*domain.RawDocument, error) {
	path := filepath.Join(d.dir, staging.ObjectName(id))
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read staged document: %w", err)
	}

	doc := &domain.RawDocument{UUID: id, Content: content}
	if info, err := os.Stat(path); err == nil {
		doc.FetchedAt = info.ModTime().UTC()
	}
	return doc, nil
}

// writeAtomic writes through a temporary file so readers never see a
// partial document.
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write staged document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staged document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename staged document: %w", err)
	}
	return nil
}
