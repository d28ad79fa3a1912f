package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

func raw(id, content string) domain.RawDocument {
	return domain.RawDocument{UUID: id, Content: []byte(content), FetchedAt: time.Unix(1700000000, 0)}
}

func TestStagingStore_CommitMakesVisible(t *testing.T) {
	ctx := context.Background()
	store := NewStagingStore()

	run, err := store.Begin(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID())

	require.NoError(t, run.Put(ctx, raw("b", "<b/>")))
	require.NoError(t, run.Put(ctx, raw("a", "<a/>")))
	require.NoError(t, run.Put(ctx, raw("a", "<a2/>")))

	ids, err := run.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	committed, err := store.Committed(ctx)
	require.NoError(t, err)
	ids, err = committed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, run.Commit(ctx))

	committed, err = store.Committed(ctx)
	require.NoError(t, err)
	ids, err = committed.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	doc, err := committed.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "<a2/>", string(doc.Content))

	_, err = committed.Get(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, run.Put(ctx, raw("c", "<c/>")), ErrRunClosed)
	assert.ErrorIs(t, run.Commit(ctx), ErrRunClosed)
}

func TestStagingStore_LaterRunOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewStagingStore()

	first, _ := store.Begin(ctx)
	require.NoError(t, first.Put(ctx, raw("a", "v1")))
	require.NoError(t, first.Commit(ctx))

	second, _ := store.Begin(ctx)
	require.NoError(t, second.Put(ctx, raw("a", "v2")))
	require.NoError(t, second.Commit(ctx))

	committed, _ := store.Committed(ctx)
	doc, err := committed.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(doc.Content))
}

func TestStagingStore_Discard(t *testing.T) {
	ctx := context.Background()
	store := NewStagingStore()

	run, _ := store.Begin(ctx)
	require.NoError(t, run.Put(ctx, raw("a", "v1")))
	require.NoError(t, run.Discard(ctx))

	committed, _ := store.Committed(ctx)
	ids, _ := committed.List(ctx)
	assert.Empty(t, ids)
	assert.ErrorIs(t, run.Commit(ctx), ErrRunClosed)
}

func TestStagingRun_PutRejectsEmptyUUID(t *testing.T) {
	run, _ := NewStagingStore().Begin(context.Background())
	err := run.Put(context.Background(), raw("", "x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStagingStore_CommittedIsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStagingStore()

	snapshot, _ := store.Committed(ctx)

	run, _ := store.Begin(ctx)
	require.NoError(t, run.Put(ctx, raw("a", "v1")))
	require.NoError(t, run.Commit(ctx))

	ids, _ := snapshot.List(ctx)
	assert.Empty(t, ids)
}
