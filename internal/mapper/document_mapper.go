package mapper

import (
	"time"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:           d.Id,
		SourcePath:   d.SourcePath,
		Title:        d.Title,
		DocumentType: entity.DocumentType(d.DocumentType),
		SourceHash:   d.SourceHash,
		TotalChunks:  d.TotalChunks,
		IngestedAt:   d.IngestedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:           d.Id,
		SourcePath:   d.SourcePath,
		Title:        d.Title,
		DocumentType: string(d.DocumentType),
		SourceHash:   d.SourceHash,
		TotalChunks:  d.TotalChunks,
		IngestedAt:   d.IngestedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
