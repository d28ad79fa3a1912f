package csw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Harvester = (*Connector)(nil)

// Connector harvests every record of a CSW registry.
type Connector struct {
	config *Config
	client *Client
	mu     sync.Mutex
	closed bool
}

// New creates a new CSW connector.
func New(cfg *Config) *Connector {
	return &Connector{
		config: cfg,
		client: NewClient(cfg),
	}
}

// Endpoint returns the registry URL.
func (c *Connector) Endpoint() string {
	return c.config.Endpoint
}

// Validate checks that the registry answers a hits-only GetRecords request.
func (c *Connector) Validate(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}

	res, err := c.client.GetRecords(ctx, resultTypeHits, 1, 1)
	if err != nil {
		return &FetchError{StartPosition: 1, Attempts: 1, StatusCode: statusCode(err), Err: err}
	}
	logger.Debug("csw: %s reports %d records", c.config.Endpoint, res.Matched)
	return nil
}

// Harvest walks the registry from the first record to the last.
func (c *Connector) Harvest(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsChan := make(chan domain.RawDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		if c.isClosed() {
			errsChan <- ErrClosed
			return
		}

		if err := c.walk(ctx, docsChan); err != nil {
			if ctx.Err() != nil {
				err = fmt.Errorf("%w: %w", domain.ErrHarvestAborted, ctx.Err())
			}
			errsChan <- err
		}
	}()

	return docsChan, errsChan
}

func (c *Connector) walk(ctx context.Context, docs chan<- domain.RawDocument) error {
	cursor := domain.NewHarvestCursor(c.config.PageSize)
	progress := newProgress()

	for !cursor.Done() {
		page, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return err
		}

		for _, doc := range page.Records {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docs <- doc:
			}
		}
		if page.Skipped > 0 {
			logger.Warn("csw: skipped %d record(s) without identifier at position %d", page.Skipped, cursor.StartPosition)
		}

		cursor.TotalMatched = page.Matched
		if page.Next == 0 || page.Next > page.Matched {
			progress.report(page.Matched, page.Matched)
			return nil
		}
		if page.Next <= cursor.StartPosition {
			return &FetchError{
				StartPosition: cursor.StartPosition,
				Attempts:      1,
				Err:           fmt.Errorf("%w: nextRecord %d does not advance", domain.ErrMalformedResponse, page.Next),
			}
		}

		progress.report(page.Next-1, page.Matched)
		cursor.StartPosition = page.Next
	}

	return nil
}

// fetchPage fetches one page within the retry budget: transient failures up
// to MaxAttempts, malformed bodies and unexpected empty pages once each.
func (c *Connector) fetchPage(ctx context.Context, cursor domain.HarvestCursor) (*SearchResults, error) {
	var (
		attempts         int
		transient        int
		malformedRetried bool
		emptyRetried     bool
	)

	for {
		attempts++
		page, err := c.client.GetRecords(ctx, resultTypeResults, cursor.StartPosition, cursor.PageSize)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		switch {
		case errors.Is(err, domain.ErrTransientFetch):
			transient++
			if transient >= c.config.MaxAttempts {
				return nil, c.fetchError(cursor, attempts, err)
			}
		case errors.Is(err, domain.ErrMalformedResponse):
			if malformedRetried {
				return nil, c.fetchError(cursor, attempts, err)
			}
			malformedRetried = true
		case err != nil:
			return nil, c.fetchError(cursor, attempts, err)
		case len(page.Records) == 0 && page.Skipped == 0 && page.Matched >= cursor.StartPosition:
			err = fmt.Errorf("%w: empty page, %d records matched", domain.ErrMalformedResponse, page.Matched)
			if emptyRetried {
				return nil, c.fetchError(cursor, attempts, err)
			}
			emptyRetried = true
		default:
			return page, nil
		}

		delay := c.backoff(transient)
		logger.Warn("csw: page at %d attempt %d failed, retrying in %s: %v", cursor.StartPosition, attempts, delay, err)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Connector) fetchError(cursor domain.HarvestCursor, attempts int, err error) *FetchError {
	return &FetchError{
		StartPosition: cursor.StartPosition,
		Attempts:      attempts,
		StatusCode:    statusCode(err),
		Err:           err,
	}
}

// backoff doubles the configured delay for every transient failure so far.
func (c *Connector) backoff(transient int) time.Duration {
	delay := c.config.RetryDelay
	for i := 1; i < transient; i++ {
		delay *= 2
	}
	return delay
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.client.http.CloseIdleConnections()
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// progress logs harvest progress in 10% steps.
type progress struct {
	nextLog int
}

func newProgress() *progress {
	return &progress{nextLog: 10}
}

func (p *progress) report(done, total int) {
	if total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct < p.nextLog {
		return
	}
	logger.Info("Downloaded %d of %d (%d%%)", done, total, pct)
	for p.nextLog <= pct {
		p.nextLog += 10
	}
}
