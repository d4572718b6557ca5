package memory

import (
	"context"
	"testing"

	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIndex(t *testing.T, dim int) *Index {
	t.Helper()
	idx, err := NewIndex(dim)
	require.NoError(t, err)
	return idx
}

func upsert(t *testing.T, idx *Index, vec []float32, attrs vectorindex.Attributes) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, idx.Upsert(context.Background(), id, vec, attrs))
	return id
}

func TestSearchOrdersByScoreDescending(t *testing.T) {
	idx := mustIndex(t, 2)
	far := upsert(t, idx, []float32{0, 1}, vectorindex.Attributes{})
	near := upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{})
	mid := upsert(t, idx, []float32{0.7, 0.7}, vectorindex.Attributes{})

	got, err := idx.Search(context.Background(), []float32{1, 0}, 10, 0, vectorindex.Filter{})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, near, got[0].ChunkId)
	assert.Equal(t, mid, got[1].ChunkId)
	assert.Equal(t, far, got[2].ChunkId)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestSearchTieBreaksByInsertionOrder(t *testing.T) {
	idx := mustIndex(t, 2)
	first := upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{})
	second := upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{})

	got, err := idx.Search(context.Background(), []float32{1, 0}, 2, 0, vectorindex.Filter{})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].ChunkId)
	assert.Equal(t, second, got[1].ChunkId)
}

func TestSearchFilterRunsBeforeTopK(t *testing.T) {
	idx := mustIndex(t, 2)
	docA := uuid.New()
	docB := uuid.New()

	// The best match belongs to docA; with a docB filter it must not
	// occupy a result slot.
	upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{DocumentId: docA, DocumentType: "pdf"})
	wantId := upsert(t, idx, []float32{0.5, 0.5}, vectorindex.Attributes{DocumentId: docB, DocumentType: "markdown"})

	got, err := idx.Search(context.Background(), []float32{1, 0}, 1, 0, vectorindex.Filter{
		DocumentIds: []uuid.UUID{docB},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, wantId, got[0].ChunkId)

	got, err = idx.Search(context.Background(), []float32{1, 0}, 1, 0, vectorindex.Filter{
		DocumentTypes: []string{"markdown"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, wantId, got[0].ChunkId)
}

func TestSearchMinScoreCut(t *testing.T) {
	idx := mustIndex(t, 2)
	upsert(t, idx, []float32{0, 1}, vectorindex.Attributes{})
	keep := upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{})

	got, err := idx.Search(context.Background(), []float32{1, 0}, 10, 0.5, vectorindex.Filter{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, keep, got[0].ChunkId)
}

func TestScoresClampedToUnitInterval(t *testing.T) {
	idx := mustIndex(t, 2)
	upsert(t, idx, []float32{-1, 0}, vectorindex.Attributes{})

	got, err := idx.Search(context.Background(), []float32{1, 0}, 1, 0, vectorindex.Filter{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0].Score, 0.0)
	assert.LessOrEqual(t, got[0].Score, 1.0)
}

func TestUpsertReplacesVector(t *testing.T) {
	idx := mustIndex(t, 2)
	id := upsert(t, idx, []float32{0, 1}, vectorindex.Attributes{})

	require.NoError(t, idx.Upsert(context.Background(), id, []float32{1, 0}, vectorindex.Attributes{}))

	vec, err := idx.Vector(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, 1, idx.Count())
}

func TestUpsertDimensionMismatch(t *testing.T) {
	idx := mustIndex(t, 3)

	err := idx.Upsert(context.Background(), uuid.New(), []float32{1, 0}, vectorindex.Attributes{})
	assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestDeleteUnknownIdIsNoop(t *testing.T) {
	idx := mustIndex(t, 2)
	id := upsert(t, idx, []float32{1, 0}, vectorindex.Attributes{})

	require.NoError(t, idx.Delete(context.Background(), uuid.New()))
	require.NoError(t, idx.Delete(context.Background(), id))
	require.NoError(t, idx.Delete(context.Background(), id))
	assert.Equal(t, 0, idx.Count())

	_, err := idx.Vector(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
}
