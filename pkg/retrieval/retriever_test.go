package retrieval

import (
	"context"
	"testing"
	"time"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/repository/contract"
	"wiki-craft-be/internal/repository/specification"
	"wiki-craft-be/pkg/embedding"
	"wiki-craft-be/pkg/vectorindex"
	"wiki-craft-be/pkg/vectorindex/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	vec, ok := f.vectors[text]
	if !ok {
		return nil, apperrors.Unavailable("no vector for text", nil)
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

type fakeChunkRepo struct {
	chunks map[uuid.UUID]*entity.Chunk
}

func (f *fakeChunkRepo) CreateBulk(_ context.Context, chunks []*entity.Chunk) error {
	for _, c := range chunks {
		f.chunks[c.Id] = c
	}
	return nil
}

func (f *fakeChunkRepo) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) (int64, error) {
	var n int64
	for id, c := range f.chunks {
		if c.DocumentId == documentId {
			delete(f.chunks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeChunkRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Chunk, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return f.chunks[byId.ID], nil
		}
	}
	return nil, nil
}

func (f *fakeChunkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var docId *uuid.UUID
	var ids []uuid.UUID
	from, to := -1, -1
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByIDs:
			ids = s.IDs
		case specification.ByDocumentID:
			id := s.DocumentID
			docId = &id
		case specification.ChunkIndexBetween:
			from, to = s.From, s.To
		}
	}

	var out []*entity.Chunk
	if ids != nil {
		for _, id := range ids {
			if c, ok := f.chunks[id]; ok {
				out = append(out, c)
			}
		}
		return out, nil
	}
	for _, c := range f.chunks {
		if docId != nil && c.DocumentId != *docId {
			continue
		}
		if from >= 0 && (c.ChunkIndex < from || c.ChunkIndex > to) {
			continue
		}
		out = append(out, c)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ChunkIndex < out[i].ChunkIndex {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}

func (f *fakeChunkRepo) FindIdsByDocumentId(_ context.Context, documentId uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, c := range f.chunks {
		if c.DocumentId == documentId {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeDocumentRepo struct {
	documents map[uuid.UUID]*entity.Document
}

func (f *fakeDocumentRepo) Create(_ context.Context, d *entity.Document) error {
	f.documents[d.Id] = d
	return nil
}

func (f *fakeDocumentRepo) Update(_ context.Context, d *entity.Document) error {
	f.documents[d.Id] = d
	return nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.documents, id)
	return nil
}

func (f *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return f.documents[byId.ID], nil
		}
	}
	return nil, nil
}

func (f *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, spec := range specs {
		if byIds, ok := spec.(specification.ByIDs); ok {
			for _, id := range byIds.IDs {
				if d, exists := f.documents[id]; exists {
					out = append(out, d)
				}
			}
			return out, nil
		}
	}
	for _, d := range f.documents {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDocumentRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(f.documents)), nil
}

func (f *fakeDocumentRepo) CountByType(_ context.Context) ([]contract.TypeCount, error) {
	return nil, nil
}

type fixture struct {
	retriever *Retriever
	index     *memory.Index
	chunks    *fakeChunkRepo
	documents *fakeDocumentRepo
	docId     uuid.UUID
	chunkIds  []uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	index, err := memory.NewIndex(3)
	require.NoError(t, err)
	chunks := &fakeChunkRepo{chunks: map[uuid.UUID]*entity.Chunk{}}
	documents := &fakeDocumentRepo{documents: map[uuid.UUID]*entity.Document{}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"rivers": {1, 0, 0},
		"birds":  {0, 1, 0},
	}}

	docId := uuid.New()
	documents.documents[docId] = &entity.Document{
		Id:           docId,
		SourcePath:   "/docs/geography.md",
		Title:        "Geography",
		DocumentType: entity.DocumentTypeMarkdown,
		TotalChunks:  3,
		IngestedAt:   time.Now(),
	}

	vectors := [][]float32{
		{1, 0, 0},     // rivers, exact match
		{0.9, 0.1, 0}, // rivers-adjacent
		{0, 1, 0},     // birds
	}
	texts := []string{
		"Rivers run to the sea.",
		"Streams feed larger rivers.",
		"Birds migrate south in winter.",
	}

	var chunkIds []uuid.UUID
	for i, vec := range vectors {
		id := uuid.New()
		chunkIds = append(chunkIds, id)
		chunks.chunks[id] = &entity.Chunk{
			Id:           id,
			DocumentId:   docId,
			DocumentType: entity.DocumentTypeMarkdown,
			ChunkIndex:   i,
			Text:         texts[i],
			ContentType:  entity.ContentTypeParagraph,
		}
		err := index.Upsert(context.Background(), id, embedding.NormalizeVector(vec), vectorindex.Attributes{
			DocumentId:   docId,
			DocumentType: string(entity.DocumentTypeMarkdown),
		})
		require.NoError(t, err)
	}

	return &fixture{
		retriever: New(index, embedder, chunks, documents, Options{DefaultLimit: 10, MaxLimit: 100}),
		index:     index,
		chunks:    chunks,
		documents: documents,
		docId:     docId,
		chunkIds:  chunkIds,
	}
}

func TestSearchRanksByRelevance(t *testing.T) {
	f := newFixture(t)

	res, err := f.retriever.Search(context.Background(), Query{Query: "rivers", Limit: 2})
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, f.chunkIds[0], res.Results[0].ChunkId)
	assert.Equal(t, f.chunkIds[1], res.Results[1].ChunkId)
	assert.Greater(t, res.Results[0].Score, res.Results[1].Score)
	assert.Equal(t, "Geography", res.Results[0].Metadata.DocumentTitle)
	assert.Equal(t, 2, res.TotalResults)
}

func TestSearchMinScoreFilters(t *testing.T) {
	f := newFixture(t)

	res, err := f.retriever.Search(context.Background(), Query{Query: "rivers", MinScore: 0.9})
	require.NoError(t, err)

	for _, r := range res.Results {
		assert.GreaterOrEqual(t, r.Score, 0.9)
	}
	assert.Less(t, len(res.Results), 3)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.retriever.Search(context.Background(), Query{Query: ""})
	assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestSearchDropsDanglingVectors(t *testing.T) {
	f := newFixture(t)

	// Vector stays in the index but the chunk row is gone.
	delete(f.chunks.chunks, f.chunkIds[0])

	res, err := f.retriever.Search(context.Background(), Query{Query: "rivers", Limit: 10})
	require.NoError(t, err)

	for _, r := range res.Results {
		assert.NotEqual(t, f.chunkIds[0], r.ChunkId)
	}
	assert.Len(t, res.Results, 2)
}

func TestSimilarExcludesSelf(t *testing.T) {
	f := newFixture(t)

	results, err := f.retriever.Similar(context.Background(), f.chunkIds[0], 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEqual(t, f.chunkIds[0], r.ChunkId)
	}
	assert.Equal(t, f.chunkIds[1], results[0].ChunkId)
}

func TestSimilarUnknownChunk(t *testing.T) {
	f := newFixture(t)

	_, err := f.retriever.Similar(context.Background(), uuid.New(), 5)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestContextWindowClipsAtDocumentEdges(t *testing.T) {
	f := newFixture(t)

	res, err := f.retriever.Context(context.Background(), f.chunkIds[0], 2)
	require.NoError(t, err)

	assert.Equal(t, f.chunkIds[0], res.Target.Id)
	require.Len(t, res.Context, 3)
	assert.Equal(t, 0, res.Context[0].ChunkIndex)
	assert.Equal(t, 2, res.Context[2].ChunkIndex)
	assert.Equal(t, "Geography", res.Document.Title)
}

func TestContextUnknownChunk(t *testing.T) {
	f := newFixture(t)

	_, err := f.retriever.Context(context.Background(), uuid.New(), 2)
	assert.True(t, apperrors.IsNotFound(err))
}
