package csw

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

// SearchResults is one parsed GetRecords response.
type SearchResults struct {
	// Matched is numberOfRecordsMatched.
	Matched int

	// Next is nextRecord; 0 means the server has no more records.
	Next int

	// Records are the identified records of the page in server order.
	Records []domain.RawDocument

	// Skipped counts records without a file identifier.
	Skipped int
}

// parseSearchResults reads a GetRecords response body. Any body that is not a
// result page yields an error wrapping domain.ErrMalformedResponse.
func parseSearchResults(body []byte, fetchedAt time.Time) (*SearchResults, error) {
	doc, err := xmltree.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	results := doc.Find("csw:SearchResults")
	if results == nil {
		if exc := doc.Find("ows:ExceptionText"); exc != nil {
			return nil, fmt.Errorf("%w: exception report: %s", domain.ErrMalformedResponse, exc.TrimmedText())
		}
		return nil, fmt.Errorf("%w: no csw:SearchResults element", domain.ErrMalformedResponse)
	}

	matched, err := intAttr(results, "numberOfRecordsMatched", true)
	if err != nil {
		return nil, err
	}
	// nextRecord is optional; absence means there is nothing further.
	next, err := intAttr(results, "nextRecord", false)
	if err != nil {
		return nil, err
	}

	page := &SearchResults{Matched: matched, Next: next}
	for _, rec := range results.FindAll("> gmd:MD_Metadata") {
		id := rec.FindText("gmd:fileIdentifier > gco:CharacterString")
		if id == "" {
			page.Skipped++
			continue
		}
		page.Records = append(page.Records, domain.RawDocument{
			UUID:      id,
			Content:   rec.OuterXML(),
			FetchedAt: fetchedAt,
		})
	}

	return page, nil
}

func intAttr(n *xmltree.Node, name string, required bool) (int, error) {
	raw, ok := n.Attr(name)
	if !ok {
		if !required {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: missing %s", domain.ErrMalformedResponse, name)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrMalformedResponse, name, raw)
	}
	return v, nil
}
