package driven

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// StagingStore persists raw documents keyed by UUID.
// Writes go to a run first; only a committed run becomes visible.
type StagingStore interface {
	// Begin opens a new run scope.
	Begin(ctx context.Context) (StagingRun, error)

	// Committed returns the documents of all committed runs.
	Committed(ctx context.Context) (StagedSet, error)
}

// StagedSet is a readable collection of staged documents.
type StagedSet interface {
	// List returns the staged UUIDs in ascending order.
	List(ctx context.Context) ([]string, error)

	// Get returns one staged document.
	// Returns domain.ErrNotFound if the UUID is not staged.
	Get(ctx context.Context, uuid string) (*domain.RawDocument, error)
}

// StagingRun collects the documents of one harvest run.
type StagingRun interface {
	StagedSet

	// ID identifies the run.
	ID() string

	// Put stores a document, replacing any earlier document with the same UUID.
	Put(ctx context.Context, doc domain.RawDocument) error

	// Commit promotes the run's documents, overwriting committed documents
	// with the same UUID.
	Commit(ctx context.Context) error

	// Discard removes everything the run staged.
	Discard(ctx context.Context) error
}
