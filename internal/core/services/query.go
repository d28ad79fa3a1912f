package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
	"github.com/custodia-labs/geocat/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Default page bounds used when none are configured.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// QueryService answers searches and detail lookups against the live catalog.
type QueryService struct {
	source       driven.CatalogSource
	defaultLimit int
	maxLimit     int
}

// NewQueryService creates a query service. Non-positive limits fall back
// to DefaultSearchLimit and MaxSearchLimit.
func NewQueryService(source driven.CatalogSource, defaultLimit, maxLimit int) *QueryService {
	if maxLimit <= 0 {
		maxLimit = MaxSearchLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultSearchLimit, maxLimit)
	}
	return &QueryService{
		source:       source,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Tokenise splits a query into runs of letters and digits.
func Tokenise(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Search performs a full-text search. Catalog failures are logged and
// reported as an empty result.
func (s *QueryService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchSummary, error) {
	terms := Tokenise(query)
	if len(terms) == 0 {
		return []domain.SearchSummary{}, nil
	}

	limit, offset := s.clamp(opts)

	reader, release, err := s.source.Acquire(ctx)
	if err != nil {
		logger.Warn("Search %q: %v", query, err)
		return []domain.SearchSummary{}, nil
	}
	defer release()

	results, err := reader.Search(ctx, terms, limit, offset)
	if err != nil {
		logger.Warn("Search %q: %v", query, err)
		return []domain.SearchSummary{}, nil
	}
	return results, nil
}

func (s *QueryService) clamp(opts domain.SearchOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset = max(opts.Offset, 0)
	return limit, offset
}

// GetDetail returns a record and its relations, each resolved one level deep.
func (s *QueryService) GetDetail(ctx context.Context, uuid string) (*domain.DetailRecord, error) {
	if strings.TrimSpace(uuid) == "" {
		return nil, domain.ErrNotFound
	}

	reader, release, err := s.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := reader.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}

	detail := &domain.DetailRecord{Record: *rec}

	if rec.ParentUUID != nil {
		parents, err := reader.Summaries(ctx, []string{*rec.ParentUUID})
		if err != nil {
			return nil, err
		}
		if len(parents) > 0 {
			detail.Parent = &parents[0]
		}
	}

	if detail.Children, err = reader.Children(ctx, uuid); err != nil {
		return nil, err
	}

	targets, err := reader.Summaries(ctx, rec.OperatesOn())
	if err != nil {
		return nil, err
	}
	detail.OperatesOn = inDeclaredOrder(rec.OperatesOn(), targets)

	if detail.OperatedOnBy, err = reader.OperatedOnBy(ctx, uuid); err != nil {
		return nil, err
	}

	return detail, nil
}

// inDeclaredOrder arranges summaries in the order their UUIDs were declared,
// dropping repeats and UUIDs that are not in the catalog.
func inDeclaredOrder(declared []string, summaries []domain.RecordSummary) []domain.RecordSummary {
	byUUID := make(map[string]domain.RecordSummary, len(summaries))
	for _, sum := range summaries {
		byUUID[sum.UUID] = sum
	}
	ordered := make([]domain.RecordSummary, 0, len(summaries))
	for _, id := range declared {
		if sum, ok := byUUID[id]; ok {
			ordered = append(ordered, sum)
			delete(byUUID, id)
		}
	}
	return ordered
}

// Stats describes the published catalog.
func (s *QueryService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	reader, release, err := s.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	stats, err := reader.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
