package mapper

import (
	"encoding/json"

	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	var hierarchy []string
	if len(c.SectionHierarchy) > 0 {
		// Malformed JSON leaves the hierarchy empty rather than failing the read.
		_ = json.Unmarshal(c.SectionHierarchy, &hierarchy)
	}

	return &entity.Chunk{
		Id:               c.Id,
		DocumentId:       c.DocumentId,
		DocumentType:     entity.DocumentType(c.DocumentType),
		ChunkIndex:       c.ChunkIndex,
		Text:             c.Text,
		ContentType:      entity.ContentType(c.ContentType),
		PageNumber:       c.PageNumber,
		SectionHierarchy: hierarchy,
		ParagraphIndex:   c.ParagraphIndex,
		CharStart:        c.CharStart,
		CharEnd:          c.CharEnd,
		SourceHash:       c.SourceHash,
		Embedding:        c.Embedding.Slice(),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}

	var hierarchy datatypes.JSON
	if len(c.SectionHierarchy) > 0 {
		raw, err := json.Marshal(c.SectionHierarchy)
		if err == nil {
			hierarchy = datatypes.JSON(raw)
		}
	}

	return &model.Chunk{
		Id:               c.Id,
		DocumentId:       c.DocumentId,
		DocumentType:     string(c.DocumentType),
		ChunkIndex:       c.ChunkIndex,
		Text:             c.Text,
		ContentType:      string(c.ContentType),
		PageNumber:       c.PageNumber,
		SectionHierarchy: hierarchy,
		ParagraphIndex:   c.ParagraphIndex,
		CharStart:        c.CharStart,
		CharEnd:          c.CharEnd,
		SourceHash:       c.SourceHash,
		Embedding:        pgvector.NewVector(c.Embedding),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
