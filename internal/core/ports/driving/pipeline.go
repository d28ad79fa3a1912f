package driving

import (
	"context"
	"time"
)

// Pipeline runs the harvest, extract, ingest and publish stages.
type Pipeline interface {
	// Harvest walks the registry, stages every document, builds a new
	// catalog from this run's documents and publishes it. A failed or
	// cancelled harvest discards its staged documents and never publishes.
	Harvest(ctx context.Context) (*RunReport, error)

	// Rebuild builds and publishes a catalog from committed staged documents
	// without contacting the registry.
	Rebuild(ctx context.Context) (*RunReport, error)

	// Rollback restores the previous catalog generation.
	Rollback(ctx context.Context) error

	// Status returns the progress of the running stage, if any.
	Status() RunStatus
}

// RunReport summarises a completed pipeline run.
type RunReport struct {
	// RunID identifies the staging run (empty for rebuilds).
	RunID string

	// Harvested is the number of documents received from the registry.
	Harvested int

	// Extracted is the number of records that normalised successfully.
	Extracted int

	// Dropped is the number of documents rejected by the extractor.
	Dropped int

	// Published is the number of records in the published catalog.
	Published int

	// CatalogPath is where the catalog was published.
	CatalogPath string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// RunStatus represents the current state of a pipeline run.
type RunStatus struct {
	// Running indicates a run is in progress.
	Running bool

	// Stage names the current stage ("harvest", "extract", "publish").
	Stage string

	// DocumentsProcessed is the count of documents handled in this stage.
	DocumentsProcessed int

	// ErrorCount is the number of record-level errors encountered.
	ErrorCount int
}
