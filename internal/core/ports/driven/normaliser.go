package driven

import "github.com/custodia-labs/geocat/internal/core/domain"

// Extractor transforms raw documents into normalised records.
// Implementations perform no I/O and are safe for concurrent use.
type Extractor interface {
	// Extract normalises one document. It fails only when the document's
	// mandatory identity cannot be located; such errors match
	// domain.ErrMalformedRecord.
	Extract(raw *domain.RawDocument) (*domain.Record, error)
}
