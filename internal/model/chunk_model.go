package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Chunk struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId       uuid.UUID       `gorm:"type:uuid;not null;index:idx_chunks_doc_order,priority:1"`
	DocumentType     string          `gorm:"type:varchar(16);index"` // denormalized for pre-filtered vector search
	ChunkIndex       int             `gorm:"not null;index:idx_chunks_doc_order,priority:2"`
	Text             string          `gorm:"type:text"`
	ContentType      string          `gorm:"type:varchar(16);default:'paragraph'"`
	PageNumber       *int            ``
	SectionHierarchy datatypes.JSON  `gorm:"type:jsonb"`
	ParagraphIndex   int             `gorm:"default:0"`
	CharStart        int             `gorm:"default:0"`
	CharEnd          int             `gorm:"default:0"`
	SourceHash       string          `gorm:"type:varchar(64)"`
	Embedding        pgvector.Vector `gorm:"type:vector(768)"` // default dims for nomic-embed-text/text-embedding-004; cmd/migrate resizes to EMBEDDING_DIMENSION
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}
