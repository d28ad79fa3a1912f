package driving

import "github.com/custodia-labs/geocat/internal/core/domain"

// SettingsService resolves application settings from configuration.
type SettingsService interface {
	// Get returns settings with defaults, the config file and environment
	// overrides applied in that order.
	Get() (*domain.Settings, error)

	// Set persists a single dot-notation key to the config file.
	Set(key string, value any) error

	// ConfigPath returns the config file location.
	ConfigPath() string
}
