package driving

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// QueryService serves reads against the published catalog.
type QueryService interface {
	// Search performs a full-text search. Queries without any word
	// characters return no results rather than every record.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchSummary, error)

	// GetDetail returns a record and its resolved relations.
	// Returns domain.ErrNotFound if the UUID is not in the catalog.
	GetDetail(ctx context.Context, uuid string) (*domain.DetailRecord, error)

	// Stats describes the published catalog.
	Stats(ctx context.Context) (*domain.CatalogStats, error)
}
