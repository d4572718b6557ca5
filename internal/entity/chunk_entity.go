package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentType classifies the structural role of a chunk's text.
type ContentType string

const (
	ContentTypeParagraph    ContentType = "paragraph"
	ContentTypeHeading      ContentType = "heading"
	ContentTypeList         ContentType = "list"
	ContentTypeTable        ContentType = "table"
	ContentTypeCode         ContentType = "code"
	ContentTypeQuote        ContentType = "quote"
	ContentTypeImageCaption ContentType = "image_caption"
	ContentTypeFootnote     ContentType = "footnote"
	ContentTypeUnknown      ContentType = "unknown"
)

func ParseContentType(s string) ContentType {
	switch ContentType(s) {
	case ContentTypeParagraph, ContentTypeHeading, ContentTypeList, ContentTypeTable,
		ContentTypeCode, ContentTypeQuote, ContentTypeImageCaption, ContentTypeFootnote:
		return ContentType(s)
	default:
		return ContentTypeUnknown
	}
}

// Chunk is the smallest retrievable unit of a document. Chunks are immutable
// once stored; replacing a document's content replaces all of its chunks.
type Chunk struct {
	Id               uuid.UUID
	DocumentId       uuid.UUID
	DocumentType     DocumentType
	ChunkIndex       int
	Text             string
	ContentType      ContentType
	PageNumber       *int
	SectionHierarchy []string
	ParagraphIndex   int
	CharStart        int
	CharEnd          int
	SourceHash       string
	Embedding        []float32
	CreatedAt        time.Time
}

// ChunkMetadata is the provenance snapshot attached to every search result.
// Field names are part of the wire contract.
type ChunkMetadata struct {
	DocumentId       uuid.UUID    `json:"document_id"`
	SourcePath       string       `json:"source_path"`
	SourceHash       string       `json:"source_hash"`
	DocumentTitle    string       `json:"document_title"`
	DocumentType     DocumentType `json:"document_type"`
	PageNumber       *int         `json:"page_number"`
	SectionHierarchy []string     `json:"section_hierarchy"`
	ParagraphIndex   int          `json:"paragraph_index"`
	ChunkIndex       int          `json:"chunk_index"`
	TotalChunks      int          `json:"total_chunks"`
	ContentType      ContentType  `json:"content_type"`
	CharStart        int          `json:"char_start"`
	CharEnd          int          `json:"char_end"`
	IngestedAt       time.Time    `json:"ingested_at"`
}

// SectionLabel joins the hierarchy into the human-readable form used in
// citations, e.g. "Chapter 1 > 1.2 Overview".
func (m ChunkMetadata) SectionLabel() string {
	if len(m.SectionHierarchy) == 0 {
		return ""
	}
	label := m.SectionHierarchy[0]
	for _, part := range m.SectionHierarchy[1:] {
		label += " > " + part
	}
	return label
}
