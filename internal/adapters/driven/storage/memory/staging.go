package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
)

// Ensure StagingStore implements the interface.
var _ driven.StagingStore = (*StagingStore)(nil)

// ErrRunClosed indicates a run was used after Commit or Discard.
var ErrRunClosed = errors.New("memory: staging run already committed or discarded")

// StagingStore keeps staged documents in memory.
type StagingStore struct {
	mu        sync.RWMutex
	committed map[string]domain.RawDocument
}

// NewStagingStore creates an empty in-memory staging store.
func NewStagingStore() *StagingStore {
	return &StagingStore{committed: make(map[string]domain.RawDocument)}
}

// Begin opens a new run.
func (s *StagingStore) Begin(_ context.Context) (driven.StagingRun, error) {
	return &StagingRun{
		store: s,
		id:    uuid.New().String(),
		docs:  make(map[string]domain.RawDocument),
	}, nil
}

// Committed returns a snapshot of the committed documents.
func (s *StagingStore) Committed(_ context.Context) (driven.StagedSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return docSet(copyDocs(s.committed)), nil
}

// StagingRun collects documents until committed.
type StagingRun struct {
	store *StagingStore
	id    string

	mu     sync.RWMutex
	docs   map[string]domain.RawDocument
	closed bool
}

// ID identifies the run.
func (r *StagingRun) ID() string { return r.id }

// Put stores a document, replacing any earlier one with the same UUID.
func (r *StagingRun) Put(_ context.Context, doc domain.RawDocument) error {
	if doc.UUID == "" {
		return fmt.Errorf("%w: document without uuid", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunClosed
	}
	doc.Content = append([]byte(nil), doc.Content...)
	r.docs[doc.UUID] = doc
	return nil
}

// List returns the run's UUIDs in ascending order.
func (r *StagingRun) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return docSet(r.docs).List(ctx)
}

// Get returns one document of the run.
func (r *StagingRun) Get(ctx context.Context, id string) (*domain.RawDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return docSet(r.docs).Get(ctx, id)
}

// Commit merges the run into the committed set.
func (r *StagingRun) Commit(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunClosed
	}
	r.closed = true

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, doc := range r.docs {
		r.store.committed[id] = doc
	}
	r.docs = nil
	return nil
}

// Discard drops the run's documents.
func (r *StagingRun) Discard(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.docs = nil
	return nil
}

// docSet is a read-only view over a document map.
type docSet map[string]domain.RawDocument

func (d docSet) List(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (d docSet) Get(_ context.Context, id string) (*domain.RawDocument, error) {
	doc, ok := d[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc.Content = append([]byte(nil), doc.Content...)
	return &doc, nil
}

func copyDocs(src map[string]domain.RawDocument) map[string]domain.RawDocument {
	dst := make(map[string]domain.RawDocument, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
