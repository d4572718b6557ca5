package contract

import (
	"context"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindIdsByDocumentId returns just the chunk ids of a document, in
	// chunk_index order. Used to drop vectors on delete without loading text.
	FindIdsByDocumentId(ctx context.Context, documentId uuid.UUID) ([]uuid.UUID, error)
}
