package driven

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// Harvester fetches every record from the remote registry.
type Harvester interface {
	// Endpoint returns the registry URL being harvested.
	Endpoint() string

	// Validate performs a lightweight request to check the registry answers.
	Validate(ctx context.Context) error

	// Harvest walks the registry to completion.
	// Documents arrive on the first channel in server order. At most one
	// fatal error is sent on the second channel. Both channels are closed
	// when the walk ends. A harvest cannot be resumed once stopped.
	Harvest(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Close releases resources.
	Close() error
}
