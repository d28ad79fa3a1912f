package driven

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// CatalogPublisher builds catalog stores in a shadow location and
// atomically replaces the published one.
type CatalogPublisher interface {
	// NewBuild creates an empty shadow store.
	NewBuild(ctx context.Context) (CatalogBuild, error)

	// Publish finalises the build and swaps it into the published slot,
	// demoting the previous store to the backup slot. Concurrent publishes
	// fail with domain.ErrPublishConflict. On any error the published store
	// is left untouched and the build is discarded.
	Publish(ctx context.Context, build CatalogBuild) error

	// Rollback restores the backup generation as the published store.
	Rollback(ctx context.Context) error

	// PublishedPath returns the location readers open.
	PublishedPath() string
}

// CatalogBuild is a shadow store being filled by one ingest run.
type CatalogBuild interface {
	// Insert adds a record. Any failure must abort the whole build.
	Insert(ctx context.Context, record *domain.Record) error

	// Count returns the number of inserted records.
	Count() int

	// Path returns the shadow store location.
	Path() string

	// Abort discards the shadow store.
	Abort() error
}
