package contract

import (
	"context"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/repository/specification"

	"github.com/google/uuid"
)

// TypeCount is one row of the per-type document breakdown used by stats.
type TypeCount struct {
	DocumentType string
	Count        int64
}

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
}
