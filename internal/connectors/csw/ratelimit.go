package csw

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// RateLimiter throttles requests to the registry.
// It combines a proactive token bucket with the server's Retry-After hints.
type RateLimiter struct {
	mu       sync.Mutex
	bucket   *rate.Limiter // Proactive throttling
	resumeAt time.Time     // From Retry-After
}

// NewRateLimiter creates a limiter allowing rps requests per second.
// A non-positive rate disables proactive throttling.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	resumeAt := r.resumeAt
	r.mu.Unlock()

	if wait := time.Until(resumeAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// UpdateFromResponse records a Retry-After hint from throttling responses
// (429 and 503). It reports whether the response asked the client to back off.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) bool {
	if resp == nil {
		return false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}

	d, ok := parseRetryAfter(resp.Header.Get(HeaderRetryAfter), time.Now())
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(d); at.After(r.resumeAt) {
		r.resumeAt = at
	}
	return true
}

// ResumeAt returns the earliest time the server accepts requests again.
func (r *RateLimiter) ResumeAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resumeAt
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
