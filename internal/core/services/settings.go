package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: harvest.page_size is read from
// GEOCAT_HARVEST_PAGE_SIZE.
const EnvPrefix = "GEOCAT_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir           = "data_dir"
	keyHarvestEndpoint   = "harvest.endpoint"
	keyHarvestPageSize   = "harvest.page_size"
	keyHarvestSchema     = "harvest.output_schema"
	keyHarvestAttempts   = "harvest.max_attempts"
	keyHarvestTimeout    = "harvest.request_timeout"
	keyHarvestRetryDelay = "harvest.retry_delay"
	keyHarvestRPS        = "harvest.requests_per_second"
	keyStagingBackend    = "staging.backend"
	keyStagingDir        = "staging.dir"
	keyStagingBucket     = "staging.bucket"
	keyStagingPrefix     = "staging.prefix"
	keyStagingRegion     = "staging.region"
	keyStagingEndpoint   = "staging.endpoint"
	keyStagingAccessKey  = "staging.access_key_id"
	keyStagingSecretKey  = "staging.secret_access_key"
	keyIngestWorkers     = "ingest.workers"
	keyLockStaleAfter    = "catalog.lock_stale_after"
	keyServerAddr        = "server.addr"
	keyServerLimit       = "server.default_limit"
	keyServerMaxLimit    = "server.max_limit"
)

// setting binds a config key to a field of domain.Settings.
// target is one of *string, *int, *float64 or *time.Duration.
type setting struct {
	key    string
	target any
}

func bindings(s *domain.Settings) []setting {
	return []setting{
		{keyDataDir, &s.DataDir},
		{keyHarvestEndpoint, &s.Harvest.Endpoint},
		{keyHarvestPageSize, &s.Harvest.PageSize},
		{keyHarvestSchema, &s.Harvest.OutputSchema},
		{keyHarvestAttempts, &s.Harvest.MaxAttempts},
		{keyHarvestTimeout, &s.Harvest.RequestTimeout},
		{keyHarvestRetryDelay, &s.Harvest.RetryDelay},
		{keyHarvestRPS, &s.Harvest.RequestsPerSecond},
		{keyStagingBackend, &s.Staging.Backend},
		{keyStagingDir, &s.Staging.Dir},
		{keyStagingBucket, &s.Staging.Bucket},
		{keyStagingPrefix, &s.Staging.Prefix},
		{keyStagingRegion, &s.Staging.Region},
		{keyStagingEndpoint, &s.Staging.Endpoint},
		{keyStagingAccessKey, &s.Staging.AccessKeyID},
		{keyStagingSecretKey, &s.Staging.SecretAccessKey},
		{keyIngestWorkers, &s.Ingest.Workers},
		{keyLockStaleAfter, &s.Ingest.LockStaleAfter},
		{keyServerAddr, &s.Server.Addr},
		{keyServerLimit, &s.Server.DefaultLimit},
		{keyServerMaxLimit, &s.Server.MaxLimit},
	}
}

// SettingKeys lists every recognised config key.
func SettingKeys() []string {
	var s domain.Settings
	b := bindings(&s)
	keys := make([]string, len(b))
	for i, setting := range b {
		keys[i] = setting.key
	}
	return keys
}

// EnvName returns the environment variable overriding a config key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService resolves application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	baseDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a settings service. Relative default
// directories are placed under baseDir (normally ~/.geocat).
func NewSettingsService(configStore driven.ConfigStore, baseDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		baseDir:     baseDir,
		lookupEnv:   os.LookupEnv,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	settings.DataDir = filepath.Join(s.baseDir, "data")
	settings.Staging.Dir = filepath.Join(s.baseDir, "staging")

	for _, b := range bindings(&settings) {
		if _, ok := s.configStore.Get(b.key); ok {
			s.fromConfig(b)
		}
		if raw, ok := s.lookupEnv(EnvName(b.key)); ok {
			if err := parseInto(b.target, raw); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvName(b.key), err)
			}
		}
	}

	if err := validateSettings(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Set parses value for a known key and persists it.
func (s *SettingsService) Set(key string, value any) error {
	var probe domain.Settings
	for _, b := range bindings(&probe) {
		if b.key != key {
			continue
		}
		if raw, ok := value.(string); ok {
			if err := parseInto(b.target, raw); err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
			}
			value = storedValue(b.target)
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) fromConfig(b setting) {
	switch t := b.target.(type) {
	case *string:
		*t = s.configStore.GetString(b.key)
	case *int:
		*t = s.configStore.GetInt(b.key)
	case *float64:
		*t = s.configStore.GetFloat(b.key)
	case *time.Duration:
		*t = s.configStore.GetDuration(b.key)
	}
}

func parseInto(target any, raw string) error {
	raw = strings.TrimSpace(raw)
	switch t := target.(type) {
	case *string:
		*t = raw
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*t = v
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*t = v
	case *time.Duration:
		if secs, err := strconv.Atoi(raw); err == nil {
			*t = time.Duration(secs) * time.Second
			return nil
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*t = v
	}
	return nil
}

// storedValue converts a parsed target back to its TOML representation.
func storedValue(target any) any {
	switch t := target.(type) {
	case *string:
		return *t
	case *int:
		return *t
	case *float64:
		return *t
	case *time.Duration:
		return t.String()
	}
	return nil
}

func validateSettings(s *domain.Settings) error {
	var problems []string
	if s.DataDir == "" {
		problems = append(problems, keyDataDir+" must be set")
	}
	if s.Harvest.PageSize <= 0 {
		problems = append(problems, keyHarvestPageSize+" must be positive")
	}
	if s.Harvest.MaxAttempts <= 0 {
		problems = append(problems, keyHarvestAttempts+" must be positive")
	}
	if s.Harvest.RequestsPerSecond < 0 {
		problems = append(problems, keyHarvestRPS+" cannot be negative")
	}
	if s.Ingest.Workers <= 0 {
		problems = append(problems, keyIngestWorkers+" must be positive")
	}
	switch s.Staging.Backend {
	case domain.StagingBackendFile:
	case domain.StagingBackendS3:
		if s.Staging.Bucket == "" {
			problems = append(problems, keyStagingBucket+" is required for the s3 backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("%s must be %q or %q", keyStagingBackend,
			domain.StagingBackendFile, domain.StagingBackendS3))
	}
	if s.Server.DefaultLimit <= 0 || s.Server.MaxLimit <= 0 {
		problems = append(problems, "server limits must be positive")
	} else if s.Server.DefaultLimit > s.Server.MaxLimit {
		problems = append(problems, keyServerLimit+" cannot exceed "+keyServerMaxLimit)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
