package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "harvest.page_size")
	assert.Contains(t, out, "GEOCAT_HARVEST_PAGE_SIZE")
	assert.Contains(t, out, "staging.backend")
}

func TestConfigSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "set", "harvest.page_size", "50")

	require.NoError(t, err)
	assert.Equal(t, "harvest.page_size", ts.settings.setKey)
	assert.Equal(t, "50", ts.settings.setValue)
	assert.Contains(t, out, "Set harvest.page_size = 50")
}

func TestConfigSetCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.err = errors.New("unknown key")

	_, err := execute(t, "config", "set", "bogus", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting bogus")
}

func TestConfigSetCmd_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "config", "set", "harvest.page_size")

	assert.Error(t, err)
}

func TestConfigPathCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp/geocat/config.toml")
}

func TestConfigPathCmd_DoesNotWireCatalog(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	wireServices = func(_ context.Context) error {
		return errors.New("catalog wired")
	}

	_, err := execute(t, "config", "path")

	assert.NoError(t, err)
}
