package iso19139

import (
	"fmt"
	"os"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor turns raw ISO 19139 documents into records.
type Extractor struct{}

// New creates a new extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract normalises one raw document. Documents that do not parse or carry
// no file identifier fail with a *MalformedRecordError.
func (e *Extractor) Extract(raw *domain.RawDocument) (*domain.Record, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := xmltree.Parse(raw.Content)
	if err != nil {
		return nil, &MalformedRecordError{UUID: raw.UUID, Reason: err.Error()}
	}

	rec := &domain.Record{
		Keywords:            []string{},
		Graphics:            []domain.Graphic{},
		CRS:                 []string{},
		DistributionFormats: []domain.Distribution{},
	}

	for _, rule := range fieldRules {
		var v string
		if n := doc.Find(rule.path); n != nil {
			v = value(n, rule.attr)
		}
		if v == "" {
			if rule.required {
				return nil, &MalformedRecordError{UUID: raw.UUID, Reason: "missing " + rule.field}
			}
			continue
		}
		rule.set(rec, v)
	}

	for _, rule := range listRules {
		for _, n := range doc.FindAll(rule.path) {
			if v := value(n, rule.attr); v != "" {
				rule.add(rec, v)
			}
		}
	}

	for _, rule := range blockRules {
		rule.apply(doc, rec)
	}

	return rec, nil
}

// ExtractFile reads and normalises a single document from disk.
func (e *Extractor) ExtractFile(path string) (*domain.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Extract(&domain.RawDocument{Content: content})
}
