package retrieval

import (
	"context"
	"time"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/repository/contract"
	"wiki-craft-be/internal/repository/specification"
	"wiki-craft-be/pkg/embedding"
	"wiki-craft-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// Options bound query limits and the candidate overfetch.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Query is a semantic search request with optional metadata filters.
type Query struct {
	Query         string
	Limit         int
	MinScore      float64
	DocumentIds   []uuid.UUID
	DocumentTypes []string
}

// Response carries ranked results plus timing, mirroring the search wire shape.
type Response struct {
	Query        string                `json:"query"`
	Results      []entity.SearchResult `json:"results"`
	TotalResults int                   `json:"total_results"`
	SearchTimeMs float64               `json:"search_time_ms"`
}

// ContextResult is a chunk with its neighbors from the same document.
type ContextResult struct {
	Target   *entity.Chunk
	Context  []*entity.Chunk
	Document *entity.Document
}

// Retriever answers similarity queries by embedding the query text,
// searching the vector index and hydrating candidates from storage.
//
// The index is overfetched relative to the requested limit so that
// vectors whose chunk row has since been deleted never cost result slots.
type Retriever struct {
	index     vectorindex.Index
	embedder  embedding.EmbeddingProvider
	chunks    contract.ChunkRepository
	documents contract.DocumentRepository
	opts      Options
}

func New(
	index vectorindex.Index,
	embedder embedding.EmbeddingProvider,
	chunks contract.ChunkRepository,
	documents contract.DocumentRepository,
	opts Options,
) *Retriever {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	return &Retriever{
		index:     index,
		embedder:  embedder,
		chunks:    chunks,
		documents: documents,
		opts:      opts,
	}
}

func (r *Retriever) Search(ctx context.Context, query Query) (*Response, error) {
	if query.Query == "" {
		return nil, apperrors.InvalidArgument("query text must not be empty")
	}
	if query.MinScore < 0 || query.MinScore > 1 {
		return nil, apperrors.InvalidArgument("min_score must be within [0, 1]")
	}
	limit := r.clampLimit(query.Limit)

	start := time.Now()

	embedRes, err := r.embedder.Generate(ctx, query.Query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	filter := vectorindex.Filter{
		DocumentIds:   query.DocumentIds,
		DocumentTypes: query.DocumentTypes,
	}
	candidates, err := r.index.Search(ctx, embedRes.Embedding.Values, overfetch(limit), query.MinScore, filter)
	if err != nil {
		return nil, err
	}

	results, err := r.hydrate(ctx, candidates, limit, uuid.Nil)
	if err != nil {
		return nil, err
	}

	return &Response{
		Query:        query.Query,
		Results:      results,
		TotalResults: len(results),
		SearchTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// Similar ranks chunks against the stored embedding of a reference chunk.
// The reference itself is excluded from the results.
func (r *Retriever) Similar(ctx context.Context, chunkId uuid.UUID, limit int) ([]entity.SearchResult, error) {
	limit = r.clampLimit(limit)

	vector, err := r.index.Vector(ctx, chunkId)
	if err != nil {
		return nil, err
	}

	candidates, err := r.index.Search(ctx, vector, overfetch(limit)+1, 0, vectorindex.Filter{})
	if err != nil {
		return nil, err
	}

	return r.hydrate(ctx, candidates, limit, chunkId)
}

// Context returns a chunk with up to window neighbors on each side, in
// chunk_index order. The range query never loads the whole document.
func (r *Retriever) Context(ctx context.Context, chunkId uuid.UUID, window int) (*ContextResult, error) {
	if window < 1 {
		window = 1
	}

	target, err := r.chunks.FindOne(ctx, specification.ByID{ID: chunkId})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.NotFound("chunk not found")
	}

	from := target.ChunkIndex - window
	if from < 0 {
		from = 0
	}
	neighbors, err := r.chunks.FindAll(ctx,
		specification.ByDocumentID{DocumentID: target.DocumentId},
		specification.ChunkIndexBetween{From: from, To: target.ChunkIndex + window},
		specification.OrderByChunkIndex{},
	)
	if err != nil {
		return nil, err
	}

	document, err := r.documents.FindOne(ctx, specification.ByID{ID: target.DocumentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperrors.NotFound("document not found")
	}

	return &ContextResult{
		Target:   target,
		Context:  neighbors,
		Document: document,
	}, nil
}

func (r *Retriever) clampLimit(limit int) int {
	if limit <= 0 {
		return r.opts.DefaultLimit
	}
	if limit > r.opts.MaxLimit {
		return r.opts.MaxLimit
	}
	return limit
}

// overfetch widens the index cut so hydration losses and a possible self
// match still leave a full page of results.
func overfetch(limit int) int {
	return limit * 3
}

// hydrate joins candidates with their chunk and document rows, preserving
// ranking order. Candidates whose rows are gone are dropped silently.
func (r *Retriever) hydrate(
	ctx context.Context,
	candidates []vectorindex.Candidate,
	limit int,
	exclude uuid.UUID,
) ([]entity.SearchResult, error) {
	results := []entity.SearchResult{}
	if len(candidates) == 0 {
		return results, nil
	}

	chunkIds := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		if c.ChunkId == exclude {
			continue
		}
		chunkIds = append(chunkIds, c.ChunkId)
	}
	if len(chunkIds) == 0 {
		return results, nil
	}

	chunks, err := r.chunks.FindAll(ctx, specification.ByIDs{IDs: chunkIds})
	if err != nil {
		return nil, err
	}
	chunkById := make(map[uuid.UUID]*entity.Chunk, len(chunks))
	documentIds := make([]uuid.UUID, 0, len(chunks))
	seenDocs := make(map[uuid.UUID]bool)
	for _, ch := range chunks {
		chunkById[ch.Id] = ch
		if !seenDocs[ch.DocumentId] {
			seenDocs[ch.DocumentId] = true
			documentIds = append(documentIds, ch.DocumentId)
		}
	}

	docById := make(map[uuid.UUID]*entity.Document)
	if len(documentIds) > 0 {
		documents, err := r.documents.FindAll(ctx, specification.ByIDs{IDs: documentIds})
		if err != nil {
			return nil, err
		}
		for _, doc := range documents {
			docById[doc.Id] = doc
		}
	}

	for _, c := range candidates {
		if len(results) >= limit {
			break
		}
		if c.ChunkId == exclude {
			continue
		}
		chunk, ok := chunkById[c.ChunkId]
		if !ok {
			continue
		}
		document, ok := docById[chunk.DocumentId]
		if !ok {
			continue
		}
		results = append(results, entity.SearchResult{
			ChunkId:  chunk.Id,
			Text:     chunk.Text,
			Score:    c.Score,
			Metadata: BuildMetadata(chunk, document),
		})
	}

	return results, nil
}

// BuildMetadata assembles the provenance snapshot for a chunk from its row
// and its document's row.
func BuildMetadata(chunk *entity.Chunk, document *entity.Document) entity.ChunkMetadata {
	return entity.ChunkMetadata{
		DocumentId:       document.Id,
		SourcePath:       document.SourcePath,
		SourceHash:       chunk.SourceHash,
		DocumentTitle:    document.Title,
		DocumentType:     document.DocumentType,
		PageNumber:       chunk.PageNumber,
		SectionHierarchy: chunk.SectionHierarchy,
		ParagraphIndex:   chunk.ParagraphIndex,
		ChunkIndex:       chunk.ChunkIndex,
		TotalChunks:      document.TotalChunks,
		ContentType:      chunk.ContentType,
		CharStart:        chunk.CharStart,
		CharEnd:          chunk.CharEnd,
		IngestedAt:       document.IngestedAt,
	}
}
