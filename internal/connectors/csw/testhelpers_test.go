package csw

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	startRe  = regexp.MustCompile(`startPosition="(\d+)"`)
	maxRe    = regexp.MustCompile(`maxRecords="(\d+)"`)
	resultRe = regexp.MustCompile(`resultType="(\w+)"`)
)

type request struct {
	start      int
	max        int
	resultType string
}

// fakeRegistry answers GetRecords requests. respond receives the 1-based
// request number and the parsed request.
// When delay is set the answer to request n is held back for delay(n) or
// until the client gives up.
type fakeRegistry struct {
	mu       sync.Mutex
	requests []request
	respond  func(n int, req request) (int, string)
	delay    func(n int) time.Duration
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := request{resultType: match(resultRe, body)}
	req.start, _ = strconv.Atoi(match(startRe, body))
	req.max, _ = strconv.Atoi(match(maxRe, body))

	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(n)):
		case <-r.Context().Done():
			return
		}
	}

	status, payload := f.respond(n, req)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeRegistry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeRegistry) snapshot() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

func match(re *regexp.Regexp, body []byte) string {
	m := re.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return string(m[1])
}

func newTestConnector(t *testing.T, f *fakeRegistry, opts ...func(*Config)) *Connector {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := &Config{
		Endpoint:       srv.URL,
		PageSize:       20,
		OutputSchema:   "http://www.isotc211.org/2005/gmd",
		MaxAttempts:    3,
		RequestTimeout: 2 * time.Second,
		RetryDelay:     time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	c := New(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// page renders records [start, start+size) of total. When the page reaches the
// end, nextRecord is endMarker (0 or total+1 depending on the server).
func page(start, size, total, endMarker int) string {
	end := start + size - 1
	if end > total {
		end = total
	}
	next := end + 1
	if end >= total {
		next = endMarker
	}

	var sb strings.Builder
	for i := start; i <= end; i++ {
		sb.WriteString(record(fmt.Sprintf("rec-%03d", i)))
	}
	return results(total, next, sb.String())
}

func results(matched, next int, records string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<csw:GetRecordsResponse xmlns:csw="http://www.opengis.net/cat/csw/2.0.2"
    xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:gco="http://www.isotc211.org/2005/gco">
  <csw:SearchStatus timestamp="2024-01-01T00:00:00"/>
  <csw:SearchResults numberOfRecordsMatched="%d" numberOfRecordsReturned="0" nextRecord="%d" elementSet="full">%s</csw:SearchResults>
</csw:GetRecordsResponse>`, matched, next, records)
}

func record(id string) string {
	return `<gmd:MD_Metadata><gmd:fileIdentifier><gco:CharacterString>` + id +
		`</gco:CharacterString></gmd:fileIdentifier></gmd:MD_Metadata>`
}

// harvestAll collects every document UUID and the terminal error of a harvest.
func harvestAll(ctx context.Context, c *Connector) ([]string, error) {
	docs, errs := c.Harvest(ctx)
	var ids []string
	for doc := range docs {
		ids = append(ids, doc.UUID)
	}
	return ids, <-errs
}
