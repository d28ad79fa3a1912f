package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geocat/internal/core/domain"
)

func newTestSettingsService(store *memory.ConfigStore, env map[string]string) *SettingsService {
	s := NewSettingsService(store, "/home/test/.geocat")
	s.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return s
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, filepath.Join("/home/test/.geocat", "data"), settings.DataDir)
	assert.Equal(t, filepath.Join("/home/test/.geocat", "staging"), settings.Staging.Dir)
	assert.Equal(t, defaults.Harvest, settings.Harvest)
	assert.Equal(t, defaults.Server, settings.Server)
	assert.Equal(t, domain.StagingBackendFile, settings.Staging.Backend)
	assert.Equal(t, time.Hour, settings.Ingest.LockStaleAfter)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("data_dir", "/srv/geocat")
	_ = store.Set("harvest.endpoint", "https://example.org/csw")
	_ = store.Set("harvest.page_size", int64(50))
	_ = store.Set("harvest.requests_per_second", 0.5)
	_ = store.Set("harvest.retry_delay", "250ms")
	_ = store.Set("catalog.lock_stale_after", "10m")
	_ = store.Set("ingest.workers", 3)

	settings, err := newTestSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, "/srv/geocat", settings.DataDir)
	assert.Equal(t, "https://example.org/csw", settings.Harvest.Endpoint)
	assert.Equal(t, 50, settings.Harvest.PageSize)
	assert.Equal(t, 0.5, settings.Harvest.RequestsPerSecond)
	assert.Equal(t, 250*time.Millisecond, settings.Harvest.RetryDelay)
	assert.Equal(t, 10*time.Minute, settings.Ingest.LockStaleAfter)
	assert.Equal(t, 3, settings.Ingest.Workers)
}

func TestSettingsService_Get_EnvironmentOverridesConfig(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("harvest.page_size", 50)
	_ = store.Set("server.addr", "127.0.0.1:3000")

	settings, err := newTestSettingsService(store, map[string]string{
		"GEOCAT_HARVEST_PAGE_SIZE":       "100",
		"GEOCAT_HARVEST_REQUEST_TIMEOUT": "15",
		"GEOCAT_STAGING_BACKEND":         "s3",
		"GEOCAT_STAGING_BUCKET":          "raw-metadata",
		"GEOCAT_SERVER_ADDR":             " :8080 ",
	}).Get()
	require.NoError(t, err)

	assert.Equal(t, 100, settings.Harvest.PageSize)
	assert.Equal(t, 15*time.Second, settings.Harvest.RequestTimeout)
	assert.Equal(t, domain.StagingBackendS3, settings.Staging.Backend)
	assert.Equal(t, "raw-metadata", settings.Staging.Bucket)
	assert.Equal(t, ":8080", settings.Server.Addr)
}

func TestSettingsService_Get_InvalidEnvironment(t *testing.T) {
	_, err := newTestSettingsService(memory.NewConfigStore(), map[string]string{
		"GEOCAT_HARVEST_PAGE_SIZE": "twenty",
	}).Get()

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "GEOCAT_HARVEST_PAGE_SIZE")
}

func TestSettingsService_Get_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		problem string
	}{
		{"zero page size", "harvest.page_size", 0, "harvest.page_size must be positive"},
		{"zero attempts", "harvest.max_attempts", 0, "harvest.max_attempts must be positive"},
		{"negative rate", "harvest.requests_per_second", -1.0, "cannot be negative"},
		{"zero workers", "ingest.workers", 0, "ingest.workers must be positive"},
		{"unknown backend", "staging.backend", "ftp", "staging.backend must be"},
		{"s3 without bucket", "staging.backend", "s3", "staging.bucket is required"},
		{"default above max", "server.default_limit", 500, "cannot exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			_ = store.Set(tt.key, tt.value)

			_, err := newTestSettingsService(store, nil).Get()
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettingsService(store, nil)

	require.NoError(t, service.Set("harvest.page_size", "40"))
	require.NoError(t, service.Set("harvest.retry_delay", "2s"))
	require.NoError(t, service.Set("harvest.requests_per_second", "1.5"))
	require.NoError(t, service.Set("staging.bucket", "b"))

	assert.Equal(t, 40, store.GetInt("harvest.page_size"))
	assert.Equal(t, "2s", store.GetString("harvest.retry_delay"))
	assert.Equal(t, 1.5, store.GetFloat("harvest.requests_per_second"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 40, settings.Harvest.PageSize)
	assert.Equal(t, 2*time.Second, settings.Harvest.RetryDelay)
	assert.Equal(t, "b", settings.Staging.Bucket)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore(), nil)

	err := service.Set("search.mode", "hybrid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = service.Set("ingest.workers", "many")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_ConfigPath(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, ":memory:", service.ConfigPath())
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "GEOCAT_DATA_DIR", EnvName("data_dir"))
	assert.Equal(t, "GEOCAT_HARVEST_PAGE_SIZE", EnvName("harvest.page_size"))
	assert.Equal(t, "GEOCAT_CATALOG_LOCK_STALE_AFTER", EnvName("catalog.lock_stale_after"))
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Contains(t, keys, "harvest.endpoint")
	assert.Contains(t, keys, "staging.secret_access_key")
	assert.Contains(t, keys, "server.max_limit")
	assert.Len(t, keys, 21)
}
