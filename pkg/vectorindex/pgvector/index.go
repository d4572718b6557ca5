package pgvector

import (
	"context"
	"errors"

	"wiki-craft-be/internal/model"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/vectorindex"

	"github.com/google/uuid"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Index runs similarity search inside Postgres with the pgvector `<=>`
// cosine distance operator. Filters become WHERE clauses, so they apply
// before the LIMIT cut; created_at and chunk_index give deterministic tie
// ordering.
type Index struct {
	db  *gorm.DB
	dim int
}

func NewIndex(db *gorm.DB, dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, apperrors.InvalidArgument("index dimension must be positive, got %d", dimension)
	}
	return &Index{db: db, dim: dimension}, nil
}

func (idx *Index) Dimension() int {
	return idx.dim
}

func (idx *Index) Upsert(ctx context.Context, chunkId uuid.UUID, vector []float32, attrs vectorindex.Attributes) error {
	if len(vector) != idx.dim {
		return apperrors.InvalidArgument("vector dimension mismatch: want %d, got %d", idx.dim, len(vector))
	}
	// Chunk rows are created by ingestion; Upsert only refreshes the
	// embedding column and its filterable attributes.
	res := idx.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Where("id = ?", chunkId).
		Updates(map[string]interface{}{
			"embedding":     pgv.NewVector(vector),
			"document_id":   attrs.DocumentId,
			"document_type": attrs.DocumentType,
		})
	if res.Error != nil {
		return apperrors.Unavailable("vector upsert failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("chunk not found: %s", chunkId)
	}
	return nil
}

func (idx *Index) Search(ctx context.Context, vector []float32, k int, minScore float64, filter vectorindex.Filter) ([]vectorindex.Candidate, error) {
	if len(vector) != idx.dim {
		return nil, apperrors.InvalidArgument("query vector dimension mismatch: want %d, got %d", idx.dim, len(vector))
	}
	if k <= 0 {
		return nil, nil
	}

	type row struct {
		Id           uuid.UUID
		DocumentId   uuid.UUID
		DocumentType string
		Similarity   float64
	}
	var rows []row

	queryVector := pgv.NewVector(vector)

	// Cosine distance in pgvector is 1 - cosine_similarity; clamp at zero
	// to keep scores inside [0,1].
	query := idx.db.WithContext(ctx).
		Table("chunks").
		Select("id, document_id, document_type, GREATEST(0, 1 - (embedding <=> ?)) AS similarity", queryVector)

	if len(filter.DocumentIds) > 0 {
		query = query.Where("document_id IN ?", filter.DocumentIds)
	}
	if len(filter.DocumentTypes) > 0 {
		query = query.Where("document_type IN ?", filter.DocumentTypes)
	}
	if minScore > 0 {
		query = query.Where("GREATEST(0, 1 - (embedding <=> ?)) >= ?", queryVector, minScore)
	}

	err := query.
		Order("similarity DESC, created_at ASC, chunk_index ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Unavailable("vector search failed", err)
	}

	results := make([]vectorindex.Candidate, len(rows))
	for i, r := range rows {
		results[i] = vectorindex.Candidate{
			ChunkId: r.Id,
			Score:   r.Similarity,
			Attributes: vectorindex.Attributes{
				DocumentId:   r.DocumentId,
				DocumentType: r.DocumentType,
			},
		}
	}
	return results, nil
}

func (idx *Index) Delete(ctx context.Context, chunkId uuid.UUID) error {
	// The embedding lives on the chunk row, which ingestion deletes inside
	// its transaction; clearing here keeps the no-op contract for ids that
	// are already gone.
	err := idx.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Where("id = ?", chunkId).
		Update("embedding", gorm.Expr("NULL")).Error
	if err != nil {
		return apperrors.Unavailable("vector delete failed", err)
	}
	return nil
}

func (idx *Index) Vector(ctx context.Context, chunkId uuid.UUID) ([]float32, error) {
	var m model.Chunk
	err := idx.db.WithContext(ctx).Select("id", "embedding").First(&m, "id = ?", chunkId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vector not found: %s", chunkId)
		}
		return nil, apperrors.Unavailable("vector lookup failed", err)
	}
	return m.Embedding.Slice(), nil
}
