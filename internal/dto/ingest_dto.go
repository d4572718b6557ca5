package dto

// IngestBlock is one pre-parsed structural unit of a document, in order.
// Parsing happens upstream; this service only chunks, embeds and stores.
type IngestBlock struct {
	Text             string   `json:"text" validate:"required"`
	ContentType      string   `json:"content_type"`
	PageNumber       *int     `json:"page_number"`
	SectionHierarchy []string `json:"section_hierarchy"`
}

type IngestDocument struct {
	SourcePath   string        `json:"source_path" validate:"required"`
	Title        string        `json:"title"`
	DocumentType string        `json:"document_type"`
	SourceHash   string        `json:"source_hash"`
	Blocks       []IngestBlock `json:"blocks" validate:"required,min=1,dive"`
}

type IngestRequest struct {
	Documents []IngestDocument `json:"documents" validate:"required,min=1,dive"`
}

// IngestResult reports per-document outcome. A failed sibling never aborts
// the rest of the batch.
type IngestResult struct {
	DocumentId    string   `json:"document_id"`
	Filename      string   `json:"filename"`
	DocumentType  string   `json:"document_type"`
	ChunksCreated int      `json:"chunks_created"`
	Status        string   `json:"status"`
	Errors        []string `json:"errors"`
}
