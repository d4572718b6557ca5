package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourcePath   string    `gorm:"type:text;not null;uniqueIndex"`
	Title        string    `gorm:"type:varchar(512)"`
	DocumentType string    `gorm:"type:varchar(16);not null;index"`
	SourceHash   string    `gorm:"type:varchar(64);index"`
	TotalChunks  int       `gorm:"default:0"`
	IngestedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
