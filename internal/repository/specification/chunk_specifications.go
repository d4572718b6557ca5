package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// BySourcePath matches the document previously ingested from the same
// source. Re-ingesting a path replaces that document.
type BySourcePath struct {
	SourcePath string
}

func (s BySourcePath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_path = ?", s.SourcePath)
}

type ByDocumentIDs struct {
	DocumentIDs []uuid.UUID
}

func (s ByDocumentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id IN ?", s.DocumentIDs)
}

type ByDocumentTypes struct {
	DocumentTypes []string
}

func (s ByDocumentTypes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_type IN ?", s.DocumentTypes)
}

// ChunkIndexBetween selects a contiguous chunk_index range (inclusive).
// Combined with ByDocumentID this is the O(window) context-window query.
type ChunkIndexBetween struct {
	From int
	To   int
}

func (s ChunkIndexBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_index BETWEEN ? AND ?", s.From, s.To)
}

// OrderByChunkIndex sorts chunks into document order.
type OrderByChunkIndex struct{}

func (s OrderByChunkIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("chunk_index ASC")
}
