package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// SearchInput is the input schema for the search_catalog tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"words to look for in titles, abstracts, keywords and publishers"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 100)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

// SearchOutput is the output schema for the search_catalog tool.
type SearchOutput struct {
	Results []domain.SearchSummary `json:"results"`
	Count   int                    `json:"count"`
}

// GetRecordInput is the input schema for the get_record tool.
type GetRecordInput struct {
	UUID string `json:"uuid" jsonschema:"the record identifier returned by search_catalog"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_catalog",
		Description: "Search the geospatial metadata catalog for datasets and services",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_record",
		Description: "Get a metadata record with its parent, children and related services",
	}, s.handleGetRecord)
}

// handleSearch handles the search_catalog tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{Limit: input.Limit, Offset: input.Offset}
	results, err := s.ports.Query.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchSummary{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleGetRecord handles the get_record tool invocation.
func (s *Server) handleGetRecord(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRecordInput,
) (*mcp.CallToolResult, domain.DetailView, error) {
	detail, err := s.ports.Query.GetDetail(ctx, input.UUID)
	if err != nil {
		return nil, domain.DetailView{}, fmt.Errorf("record %q: %w", input.UUID, err)
	}
	return nil, detail.View(), nil
}
