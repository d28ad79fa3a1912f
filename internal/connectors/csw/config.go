package csw

import (
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// Config holds the parameters of one harvest.
type Config struct {
	Endpoint          string
	PageSize          int
	OutputSchema      string
	MaxAttempts       int
	RequestTimeout    time.Duration
	RetryDelay        time.Duration
	RequestsPerSecond float64
}

// ConfigFromSettings validates harvest settings and fills missing values
// with defaults.
func ConfigFromSettings(s domain.HarvestSettings) (*Config, error) {
	defaults := domain.DefaultSettings().Harvest

	cfg := &Config{
		Endpoint:          s.Endpoint,
		PageSize:          s.PageSize,
		OutputSchema:      s.OutputSchema,
		MaxAttempts:       s.MaxAttempts,
		RequestTimeout:    s.RequestTimeout,
		RetryDelay:        s.RetryDelay,
		RequestsPerSecond: s.RequestsPerSecond,
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrConfigInvalidEndpoint, cfg.Endpoint)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.OutputSchema == "" {
		cfg.OutputSchema = defaults.OutputSchema
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	// Zero or negative disables proactive throttling.
	if cfg.RequestsPerSecond < 0 {
		cfg.RequestsPerSecond = 0
	}

	return cfg, nil
}
