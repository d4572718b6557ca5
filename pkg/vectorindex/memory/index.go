package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type indexEntry struct {
	chunkId uuid.UUID
	vector  []float32
	attrs   vectorindex.Attributes
	seq     uint64 // insertion order, breaks score ties deterministically
}

// Index is a brute-force exact cosine similarity index. Recall is 1.0 at any
// corpus size, which keeps small-corpus correctness tests honest; the
// pgvector backend takes over when the corpus outgrows a single process.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries []indexEntry
	byId    map[uuid.UUID]int // chunk id -> position in entries
	nextSeq uint64
}

func NewIndex(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, apperrors.InvalidArgument("index dimension must be positive, got %d", dimension)
	}
	return &Index{
		dim:  dimension,
		byId: make(map[uuid.UUID]int),
	}, nil
}

func (idx *Index) Dimension() int {
	return idx.dim
}

func (idx *Index) Upsert(ctx context.Context, chunkId uuid.UUID, vector []float32, attrs vectorindex.Attributes) error {
	if len(vector) != idx.dim {
		return apperrors.InvalidArgument("vector dimension mismatch: want %d, got %d", idx.dim, len(vector))
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if pos, ok := idx.byId[chunkId]; ok {
		// Updates keep the original insertion order.
		idx.entries[pos].vector = v
		idx.entries[pos].attrs = attrs
		return nil
	}

	idx.entries = append(idx.entries, indexEntry{
		chunkId: chunkId,
		vector:  v,
		attrs:   attrs,
		seq:     idx.nextSeq,
	})
	idx.byId[chunkId] = len(idx.entries) - 1
	idx.nextSeq++
	return nil
}

func (idx *Index) Search(ctx context.Context, vector []float32, k int, minScore float64, filter vectorindex.Filter) ([]vectorindex.Candidate, error) {
	if len(vector) != idx.dim {
		return nil, apperrors.InvalidArgument("query vector dimension mismatch: want %d, got %d", idx.dim, len(vector))
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		entry indexEntry
		score float64
	}

	// The filter runs before scoring and before the top-k cut.
	matches := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		if !filter.Empty() && !filter.Matches(e.attrs) {
			continue
		}
		score := cosineSimilarity(vector, e.vector)
		if score < minScore {
			continue
		}
		matches = append(matches, scored{entry: e, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].entry.seq < matches[j].entry.seq
	})

	if k > len(matches) {
		k = len(matches)
	}

	results := make([]vectorindex.Candidate, k)
	for i := 0; i < k; i++ {
		results[i] = vectorindex.Candidate{
			ChunkId:    matches[i].entry.chunkId,
			Score:      matches[i].score,
			Attributes: matches[i].entry.attrs,
		}
	}
	return results, nil
}

func (idx *Index) Delete(ctx context.Context, chunkId uuid.UUID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	pos, ok := idx.byId[chunkId]
	if !ok {
		return nil
	}

	idx.entries = append(idx.entries[:pos], idx.entries[pos+1:]...)
	delete(idx.byId, chunkId)
	for i := pos; i < len(idx.entries); i++ {
		idx.byId[idx.entries[i].chunkId] = i
	}
	return nil
}

func (idx *Index) Vector(ctx context.Context, chunkId uuid.UUID) ([]float32, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pos, ok := idx.byId[chunkId]
	if !ok {
		return nil, apperrors.NotFound("vector not found: %s", chunkId)
	}
	v := make([]float32, len(idx.entries[pos].vector))
	copy(v, idx.entries[pos].vector)
	return v, nil
}

// Count reports the number of indexed vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// cosineSimilarity clamps to [0,1]: anti-correlated vectors score 0 rather
// than going negative, matching the pgvector backend's GREATEST(0, 1 - dist).
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
