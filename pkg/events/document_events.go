package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeDocumentDeleted  = "DOCUMENT_DELETED"
)

// NewDocumentIngested is emitted after a document and its chunks are stored
// and indexed.
func NewDocumentIngested(documentId uuid.UUID, sourcePath string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"source_path": sourcePath,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewDocumentDeleted is emitted after a document, its chunks and its vectors
// are removed.
func NewDocumentDeleted(documentId uuid.UUID, chunksDeleted int64) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id":    documentId.String(),
			"chunks_deleted": chunksDeleted,
		},
		OccurredAt: time.Now().UTC(),
	}
}
