package entity

import "github.com/google/uuid"

// SearchResult is a transient, derived match. Never persisted.
type SearchResult struct {
	ChunkId  uuid.UUID     `json:"chunk_id"`
	Text     string        `json:"text"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}
