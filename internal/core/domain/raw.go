package domain

import "time"

// RawDocument is one metadata record exactly as received from the registry.
// It is the harvester's output before extraction.
type RawDocument struct {
	// UUID is the record's file identifier, used as the staging key.
	UUID string

	// Content is the serialised gmd:MD_Metadata element.
	Content []byte

	// FetchedAt is when the page carrying this record was received.
	FetchedAt time.Time
}

// HarvestCursor is the transient pagination state of one harvest run.
type HarvestCursor struct {
	// StartPosition is the 1-based offset of the next page to request.
	StartPosition int

	// PageSize is the number of records requested per page.
	PageSize int

	// TotalMatched is the server-declared result set size.
	// TotalUnknown until the first page has been received.
	TotalMatched int
}

// TotalUnknown marks a cursor whose total has not been declared yet.
const TotalUnknown = -1

// NewHarvestCursor returns a cursor positioned at the first record.
func NewHarvestCursor(pageSize int) HarvestCursor {
	return HarvestCursor{
		StartPosition: 1,
		PageSize:      pageSize,
		TotalMatched:  TotalUnknown,
	}
}

// Done reports whether the walk has passed the end of the result set.
func (c HarvestCursor) Done() bool {
	if c.TotalMatched == TotalUnknown {
		return false
	}
	return c.StartPosition > c.TotalMatched
}
