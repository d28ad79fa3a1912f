package mcp

import (
	"context"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results  []domain.SearchSummary
	detail   *domain.DetailRecord
	stats    *domain.CatalogStats
	err      error
	lastOpts domain.SearchOptions
	lastUUID string
}

func (m *mockQueryService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchSummary, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockQueryService) GetDetail(_ context.Context, uuid string) (*domain.DetailRecord, error) {
	m.lastUUID = uuid
	return m.detail, m.err
}

func (m *mockQueryService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return m.stats, m.err
}
