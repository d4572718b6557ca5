package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies the format of an ingested source document.
type DocumentType string

const (
	DocumentTypePDF      DocumentType = "pdf"
	DocumentTypeWord     DocumentType = "docx"
	DocumentTypeExcel    DocumentType = "xlsx"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypeHTML     DocumentType = "html"
	DocumentTypeEPUB     DocumentType = "epub"
	DocumentTypeText     DocumentType = "text"
	DocumentTypeUnknown  DocumentType = "unknown"
)

// ParseDocumentType maps a wire value to a known type, falling back to unknown.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocumentTypePDF, DocumentTypeWord, DocumentTypeExcel, DocumentTypeMarkdown,
		DocumentTypeHTML, DocumentTypeEPUB, DocumentTypeText:
		return DocumentType(s)
	default:
		return DocumentTypeUnknown
	}
}

type Document struct {
	Id           uuid.UUID
	SourcePath   string
	Title        string
	DocumentType DocumentType
	SourceHash   string
	TotalChunks  int
	IngestedAt   time.Time
	UpdatedAt    *time.Time
}

// DocumentSection is a unique section heading path observed in a document's chunks.
type DocumentSection struct {
	Hierarchy  []string `json:"hierarchy"`
	PageNumber *int     `json:"page_number"`
}
