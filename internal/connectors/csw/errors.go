package csw

import (
	"errors"
	"fmt"
)

// CSW-specific errors.
var (
	// ErrConfigInvalidEndpoint indicates the registry URL is unusable.
	ErrConfigInvalidEndpoint = errors.New("csw: invalid endpoint")

	// ErrClosed indicates the connector has been closed.
	ErrClosed = errors.New("csw: connector closed")
)

// FetchError reports a page that could not be fetched within the retry budget.
// Err wraps domain.ErrTransientFetch or domain.ErrMalformedResponse.
type FetchError struct {
	StartPosition int
	Attempts      int
	StatusCode    int
	Err           error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("csw: page at %d failed after %d attempt(s) (HTTP %d): %v",
			e.StartPosition, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("csw: page at %d failed after %d attempt(s): %v", e.StartPosition, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// statusError is a non-2xx response from the registry.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// statusCode extracts the HTTP status of a failed attempt, or 0.
func statusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
