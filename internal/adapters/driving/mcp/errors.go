// Package mcp provides an MCP (Model Context Protocol) server adapter for geocat.
// It lets AI assistants search the local metadata catalog and read records.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
