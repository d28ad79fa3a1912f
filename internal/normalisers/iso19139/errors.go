package iso19139

import (
	"fmt"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// MalformedRecordError reports a document that cannot become a record.
type MalformedRecordError struct {
	UUID   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.UUID != "" {
		return fmt.Sprintf("malformed record %s: %s", e.UUID, e.Reason)
	}
	return "malformed record: " + e.Reason
}

// Unwrap allows errors.Is(err, domain.ErrMalformedRecord).
func (e *MalformedRecordError) Unwrap() error {
	return domain.ErrMalformedRecord
}
