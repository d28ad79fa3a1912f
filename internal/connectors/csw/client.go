package csw

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// maxBodySize bounds a single response body.
const maxBodySize = 256 << 20

// Client posts GetRecords requests to one registry endpoint.
type Client struct {
	http        *http.Client
	config      *Config
	rateLimiter *RateLimiter
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg *Config) *Client {
	return &Client{
		http:        &http.Client{},
		config:      cfg,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// GetRecords performs a single GetRecords attempt bounded by the request
// timeout. Errors wrap domain.ErrTransientFetch for transport problems and
// domain.ErrMalformedResponse for unusable bodies.
func (c *Client) GetRecords(ctx context.Context, resultType string, start, maxRecords int) (*SearchResults, error) {
	body, err := buildGetRecords(getRecordsParams{
		ResultType:    resultType,
		StartPosition: start,
		MaxRecords:    maxRecords,
		OutputSchema:  c.config.OutputSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientFetch, &statusError{code: resp.StatusCode})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransientFetch, err)
	}

	return parseSearchResults(data, time.Now().UTC())
}
