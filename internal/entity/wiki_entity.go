package entity

import (
	"time"

	"github.com/google/uuid"
)

// WikiSource points a piece of synthesized content back to the exact chunk
// it came from.
type WikiSource struct {
	ChunkId        uuid.UUID `json:"chunk_id"`
	DocumentId     uuid.UUID `json:"document_id"`
	DocumentTitle  string    `json:"document_title"`
	SourcePath     string    `json:"source_path"`
	PageNumber     *int      `json:"page_number"`
	Section        string    `json:"section"`
	RelevanceScore float64   `json:"relevance_score"`
	Excerpt        string    `json:"excerpt"`
}

// WikiSection is one node of the synthesized article tree. Subsection depth
// is bounded by the synthesizer.
type WikiSection struct {
	Heading     string        `json:"heading"`
	Content     string        `json:"content"`
	Confidence  float64       `json:"confidence"`
	Sources     []WikiSource  `json:"sources"`
	Subsections []WikiSection `json:"subsections"`
}

// WikiEntry is a synthesized, citation-backed article. Transient unless
// explicitly cached.
type WikiEntry struct {
	EntryId     uuid.UUID     `json:"entry_id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Sections    []WikiSection `json:"sections"`
	AllSources  []WikiSource  `json:"all_sources"`
	GeneratedAt time.Time     `json:"generated_at"`
	Query       string        `json:"query"`
}
