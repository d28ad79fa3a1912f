package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "roads")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Roads of Norway")
	assert.Contains(t, out, "rec-1 | dataset | Kartverket | open")
	assert.Contains(t, out, "All roads")
	assert.NotContains(t, out, "<b>")
	assert.Equal(t, domain.SearchOptions{Limit: 10}, ts.query.lastOpts)
}

func TestSearchCmd_PassesLimitAndOffset(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "-n", "5", "--offset", "20", "roads")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchOptions{Limit: 5, Offset: 20}, ts.query.lastOpts)
	assert.Contains(t, out, "[21] Roads of Norway")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--json", "roads")

	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "rec-1", got[0]["uuid"])
	assert.Equal(t, "<b>Roads</b> of Norway", got[0]["title"])
	assert.Equal(t, true, got[0]["isOpen"])
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.results = nil

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_EmptyJSONIsArray(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.results = nil

	out, err := execute(t, "search", "--json", "nothing")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.err = errors.New("boom")

	_, err := execute(t, "search", "roads")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	queryService = nil

	_, err := execute(t, "search", "roads")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestDescribe(t *testing.T) {
	publisher := "NVE"
	empty := ""

	assert.Equal(t, "a", describe("a", "", nil, false))
	assert.Equal(t, "a | service | NVE", describe("a", "service", &publisher, false))
	assert.Equal(t, "a | open", describe("a", "", &empty, true))
}
