package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

func strPtr(s string) *string { return &s }

// newRecord returns a minimal record with the given identity and title.
func newRecord(uuid, title string, opts ...func(*domain.Record)) *domain.Record {
	r := &domain.Record{
		UUID:                uuid,
		Title:               title,
		Keywords:            []string{},
		Graphics:            []domain.Graphic{},
		CRS:                 []string{},
		DistributionFormats: []domain.Distribution{},
		Type:                domain.TypeDataset,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func withAbstract(a string) func(*domain.Record) {
	return func(r *domain.Record) { r.Abstract = a }
}

func withOpen() func(*domain.Record) {
	return func(r *domain.Record) {
		r.Constraints.AccessConstraints = strPtr(domain.AccessNoRestrictions)
	}
}

func withParent(p string) func(*domain.Record) {
	return func(r *domain.Record) { r.ParentUUID = strPtr(p) }
}

func withOperatesOn(ids ...string) func(*domain.Record) {
	return func(r *domain.Record) {
		r.Type = domain.TypeService
		r.Spec = &domain.ServiceSpec{ServiceType: strPtr("view"), OperatesOn: ids}
	}
}

// publish builds a catalog generation from records and publishes it in dir.
func publish(t *testing.T, p *Publisher, records ...*domain.Record) {
	t.Helper()
	ctx := context.Background()

	build, err := p.NewBuild(ctx)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, build.Insert(ctx, r))
	}
	require.NoError(t, p.Publish(ctx, build))
}

// openPublished publishes records into a fresh directory and opens a reader.
func openPublished(t *testing.T, records ...*domain.Record) *Reader {
	t.Helper()
	dir := t.TempDir()
	publish(t, NewPublisher(dir, 0), records...)

	r, err := OpenReader(filepath.Join(dir, PublishedName))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func countRecords(t *testing.T, path string) int {
	t.Helper()
	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)
	return stats.Records
}

func uuids(summaries []domain.RecordSummary) []string {
	ids := make([]string, len(summaries))
	for i, s := range summaries {
		ids[i] = s.UUID
	}
	return ids
}
