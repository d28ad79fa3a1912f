package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for geocat resources.
	uriScheme = "geocat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the published catalog.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "catalog",
		Name:        "catalog",
		Description: "Record count and publish time of the local catalog",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	// Template for single records.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{uuid}",
		Name:        "record",
		Description: "A metadata record with its resolved relations",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

// handleCatalogResource returns the published catalog statistics.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Query.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog stats: %w", err)
	}

	info := struct {
		Records     int    `json:"records"`
		PublishedAt string `json:"publishedAt"`
	}{
		Records:     stats.Records,
		PublishedAt: stats.PublishedAt.UTC().Format(time.RFC3339),
	}

	return jsonResource(req.Params.URI, info)
}

// handleRecordResource returns one record by UUID.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract uuid from URI: geocat://records/{uuid}
	id := extractRecordID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	detail, err := s.ports.Query.GetDetail(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	return jsonResource(req.Params.URI, detail.View())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordID extracts the record UUID from a URI like geocat://records/{uuid}.
func extractRecordID(uri string) string {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return id
}
