package dto

import (
	"wiki-craft-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentSummary struct {
	DocumentId    uuid.UUID `json:"document_id"`
	SourcePath    string    `json:"source_path"`
	DocumentTitle string    `json:"document_title"`
	DocumentType  string    `json:"document_type"`
	TotalChunks   int       `json:"total_chunks"`
	IngestedAt    string    `json:"ingested_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int64             `json:"total"`
	Offset    int               `json:"offset"`
	Limit     int               `json:"limit"`
}

type ShowDocumentResponse struct {
	DocumentId    uuid.UUID                `json:"document_id"`
	SourcePath    string                   `json:"source_path"`
	DocumentTitle string                   `json:"document_title"`
	DocumentType  string                   `json:"document_type"`
	TotalChunks   int                      `json:"total_chunks"`
	IngestedAt    string                   `json:"ingested_at"`
	Sections      []entity.DocumentSection `json:"sections"`
}

type ChunkSummary struct {
	ChunkId    uuid.UUID `json:"chunk_id"`
	Text       string    `json:"text"`
	ChunkIndex int       `json:"chunk_index"`
	PageNumber *int      `json:"page_number"`
	Section    *string   `json:"section"`
}

type DocumentChunksResponse struct {
	DocumentId uuid.UUID      `json:"document_id"`
	Chunks     []ChunkSummary `json:"chunks"`
	Total      int64          `json:"total"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

type DocumentTextResponse struct {
	DocumentId    uuid.UUID `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	Text          string    `json:"text"`
	WordCount     int       `json:"word_count"`
	ChunkCount    int       `json:"chunk_count"`
}

type DeleteDocumentResponse struct {
	Status        string    `json:"status"`
	DocumentId    uuid.UUID `json:"document_id"`
	ChunksDeleted int64     `json:"chunks_deleted"`
}

type ShowChunkResponse struct {
	ChunkId  uuid.UUID            `json:"chunk_id"`
	Text     string               `json:"text"`
	Metadata entity.ChunkMetadata `json:"metadata"`
}

type StatsResponse struct {
	TotalDocuments  int64            `json:"total_documents"`
	TotalChunks     int64            `json:"total_chunks"`
	DocumentsByType map[string]int64 `json:"documents_by_type"`
	AvgChunksPerDoc float64          `json:"avg_chunks_per_document"`
}
