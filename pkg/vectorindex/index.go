package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// Attributes are the filterable facts stored next to each vector.
type Attributes struct {
	DocumentId   uuid.UUID
	DocumentType string
}

// Filter restricts a search to document id and/or document type sets. It is
// an explicit predicate evaluated BEFORE the top-k cut: a filtered-out
// candidate never occupies a result slot.
type Filter struct {
	DocumentIds   []uuid.UUID
	DocumentTypes []string
}

func (f Filter) Empty() bool {
	return len(f.DocumentIds) == 0 && len(f.DocumentTypes) == 0
}

func (f Filter) Matches(attrs Attributes) bool {
	if len(f.DocumentIds) > 0 {
		found := false
		for _, id := range f.DocumentIds {
			if id == attrs.DocumentId {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.DocumentTypes) > 0 {
		found := false
		for _, t := range f.DocumentTypes {
			if t == attrs.DocumentType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Candidate is a raw similarity match before metadata hydration.
type Candidate struct {
	ChunkId    uuid.UUID
	Score      float64
	Attributes Attributes
}

// Index is the similarity search contract over chunk embeddings.
//
// Scores are cosine similarity clamped to [0,1], descending; ties break by
// insertion order so results are reproducible. Dimensionality is fixed at
// index creation and a mismatched Upsert fails with InvalidArgument.
type Index interface {
	Upsert(ctx context.Context, chunkId uuid.UUID, vector []float32, attrs Attributes) error
	Search(ctx context.Context, vector []float32, k int, minScore float64, filter Filter) ([]Candidate, error)
	// Delete removes a vector. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, chunkId uuid.UUID) error
	// Vector returns the stored embedding for a chunk, NotFound when absent.
	Vector(ctx context.Context, chunkId uuid.UUID) ([]float32, error)
	Dimension() int
}
