package dto

import (
	"wiki-craft-be/internal/entity"

	"github.com/google/uuid"
)

type SearchRequest struct {
	Query         string   `json:"query" validate:"required"`
	Limit         int      `json:"limit" validate:"omitempty,min=1,max=100"`
	MinScore      float64  `json:"min_score" validate:"omitempty,min=0,max=1"`
	DocumentIds   []string `json:"document_ids"`
	DocumentTypes []string `json:"document_types"`
}

type SearchResponse struct {
	Query        string                `json:"query"`
	Results      []entity.SearchResult `json:"results"`
	TotalResults int                   `json:"total_results"`
	SearchTimeMs float64               `json:"search_time_ms"`
}

type ContextChunk struct {
	Id       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Index    int       `json:"index"`
	IsTarget bool      `json:"is_target"`
}

type TargetChunk struct {
	Id    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Index int       `json:"index"`
}

type ChunkContextResponse struct {
	TargetChunk   TargetChunk    `json:"target_chunk"`
	Context       []ContextChunk `json:"context"`
	DocumentId    uuid.UUID      `json:"document_id"`
	DocumentTitle string         `json:"document_title"`
}
