package driven

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// CatalogSource hands out read handles on the currently published catalog.
type CatalogSource interface {
	// Acquire returns a reader pinned to the catalog generation that is
	// published at call time. The release function must be called exactly
	// once; the generation stays open until every reader has released it.
	// Returns domain.ErrNoCatalog when nothing has been published yet.
	Acquire(ctx context.Context) (CatalogReader, func(), error)
}

// CatalogReader queries one catalog generation. It never mutates it.
type CatalogReader interface {
	// Search returns records matching the terms, best first.
	// An empty term list returns no rows.
	Search(ctx context.Context, terms []string, limit, offset int) ([]domain.SearchSummary, error)

	// Get returns the full record.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, uuid string) (*domain.Record, error)

	// Summaries returns summaries for the given UUIDs that exist, in UUID order.
	Summaries(ctx context.Context, uuids []string) ([]domain.RecordSummary, error)

	// Children returns summaries of records whose parent is uuid.
	Children(ctx context.Context, uuid string) ([]domain.RecordSummary, error)

	// OperatedOnBy returns summaries of records whose service spec names uuid.
	OperatedOnBy(ctx context.Context, uuid string) ([]domain.RecordSummary, error)

	// Stats describes this generation.
	Stats(ctx context.Context) (*domain.CatalogStats, error)
}
