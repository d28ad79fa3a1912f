package domain

import "time"

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int
}

// SearchSummary represents a single search hit.
// Title and Abstract carry <b>…</b> markers around matched terms.
type SearchSummary struct {
	UUID      string  `json:"uuid"`
	Title     string  `json:"title,omitempty"`
	Abstract  string  `json:"abstract,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
	Type      string  `json:"type,omitempty"`
	Protocol  string  `json:"protocol,omitempty"`
	IsOpen    bool    `json:"isOpen"`
	Thumbnail *string `json:"thumbnail,omitempty"`

	// Score is the boosted relevance (lower is better, as reported by bm25).
	Score float64 `json:"-"`
}

// RecordSummary is the compact form of a record used in relations.
type RecordSummary struct {
	UUID      string  `json:"uuid"`
	Title     string  `json:"title,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
	Type      string  `json:"type,omitempty"`
	Protocol  string  `json:"protocol,omitempty"`
	IsOpen    bool    `json:"isOpen"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// Summarise builds the compact form of a record.
func Summarise(r *Record) RecordSummary {
	s := RecordSummary{
		UUID:      r.UUID,
		Title:     r.Title,
		Publisher: r.Publisher,
		Type:      r.Type,
		Protocol:  r.Protocol,
		IsOpen:    r.IsOpen(),
	}
	if thumb := r.Thumbnail(); thumb != "" {
		s.Thumbnail = &thumb
	}
	return s
}

// DetailRecord is a stored record plus its resolved relations.
type DetailRecord struct {
	Record Record

	// Parent is the record named by Record.ParentUUID, if it exists.
	Parent *RecordSummary

	// Children are records whose parent is this record.
	Children []RecordSummary

	// OperatesOn are the records named in this record's service spec.
	OperatesOn []RecordSummary

	// OperatedOnBy are services whose spec names this record.
	OperatedOnBy []RecordSummary
}

// CatalogStats describes the currently published catalog.
type CatalogStats struct {
	// Path is the published store location.
	Path string

	// Records is the number of stored records.
	Records int

	// PublishedAt is the modification time of the published store.
	PublishedAt time.Time
}
