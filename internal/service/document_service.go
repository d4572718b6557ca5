package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/pkg/logger"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/repository/specification"
	"wiki-craft-be/internal/repository/unitofwork"
	"wiki-craft-be/pkg/chunker"
	"wiki-craft-be/pkg/embedding"
	"wiki-craft-be/pkg/retrieval"
	"wiki-craft-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) ([]dto.IngestResult, error)
	List(ctx context.Context, offset, limit int) (*dto.ListDocumentsResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	GetChunks(ctx context.Context, id uuid.UUID, offset, limit int) (*dto.DocumentChunksResponse, error)
	GetText(ctx context.Context, id uuid.UUID) (*dto.DocumentTextResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteDocumentResponse, error)
	GetChunk(ctx context.Context, id uuid.UUID) (*dto.ShowChunkResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	chunker           *chunker.Chunker
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
	locker            *serverutils.DocumentLocker
	publisherService  IPublisherService
	log               logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	chk *chunker.Chunker,
	embeddingProvider embedding.EmbeddingProvider,
	index vectorindex.Index,
	locker *serverutils.DocumentLocker,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		chunker:           chk,
		embeddingProvider: embeddingProvider,
		index:             index,
		locker:            locker,
		publisherService:  publisherService,
		log:               log,
	}
}

// Ingest stores a batch of pre-parsed documents. Each document is chunked,
// embedded and committed independently: a failing document reports an error
// result and never aborts its siblings.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestRequest) ([]dto.IngestResult, error) {
	results := make([]dto.IngestResult, 0, len(req.Documents))
	for i := range req.Documents {
		results = append(results, s.ingestOne(ctx, &req.Documents[i]))
	}
	return results, nil
}

func (s *documentService) ingestOne(ctx context.Context, doc *dto.IngestDocument) dto.IngestResult {
	docType := entity.ParseDocumentType(doc.DocumentType)
	result := dto.IngestResult{
		Filename:     doc.SourcePath,
		DocumentType: string(docType),
		Status:       "success",
		Errors:       []string{},
	}

	blocks := make([]chunker.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		blocks[i] = chunker.Block{
			Text:             b.Text,
			ContentType:      entity.ParseContentType(b.ContentType),
			PageNumber:       b.PageNumber,
			SectionHierarchy: b.SectionHierarchy,
			Position:         i,
		}
	}

	chunks := s.chunker.Split(blocks)
	if len(chunks) == 0 {
		result.Status = "error"
		result.Errors = append(result.Errors, "document produced no chunks")
		return result
	}

	// Embed before taking the document lock; only the commit needs the
	// critical section.
	vectors := make([][]float32, len(chunks))
	for i, ch := range chunks {
		resp, err := s.embeddingProvider.Generate(ctx, ch.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			result.Status = "error"
			result.Errors = append(result.Errors, "embedding failed: "+err.Error())
			return result
		}
		vectors[i] = embedding.NormalizeVector(resp.Embedding.Values)
	}

	documentId, chunksCreated, err := s.putDocument(ctx, doc, docType, chunks, vectors)
	if err != nil {
		result.Status = "error"
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.DocumentId = documentId.String()
	result.ChunksCreated = chunksCreated
	s.publishChange(ctx, DocumentChangeMessage{
		DocumentId:    documentId,
		SourcePath:    doc.SourcePath,
		Change:        "ingested",
		ChunksChanged: int64(chunksCreated),
	})
	return result
}

// putDocument replaces a document and its chunks in one transaction, then
// brings the vector index in line. The per-document lock spans both so a
// concurrent search never sees the index half-updated against a committed row.
func (s *documentService) putDocument(
	ctx context.Context,
	doc *dto.IngestDocument,
	docType entity.DocumentType,
	chunks []chunker.Chunk,
	vectors [][]float32,
) (uuid.UUID, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DocumentRepository().FindOne(ctx, specification.BySourcePath{SourcePath: doc.SourcePath})
	if err != nil {
		return uuid.Nil, 0, err
	}

	documentId := uuid.New()
	if existing != nil {
		documentId = existing.Id
	}

	s.locker.Lock(documentId)
	defer s.locker.Unlock(documentId)

	var oldChunkIds []uuid.UUID
	if existing != nil {
		oldChunkIds, err = uow.ChunkRepository().FindIdsByDocumentId(ctx, documentId)
		if err != nil {
			return uuid.Nil, 0, err
		}
	}

	title := doc.Title
	if title == "" {
		title = titleFromPath(doc.SourcePath)
	}

	now := time.Now()
	document := &entity.Document{
		Id:           documentId,
		SourcePath:   doc.SourcePath,
		Title:        title,
		DocumentType: docType,
		SourceHash:   doc.SourceHash,
		TotalChunks:  len(chunks),
		IngestedAt:   now,
	}

	chunkEntities := make([]*entity.Chunk, len(chunks))
	for i, ch := range chunks {
		chunkEntities[i] = &entity.Chunk{
			Id:               uuid.New(),
			DocumentId:       documentId,
			DocumentType:     docType,
			ChunkIndex:       ch.ChunkIndex,
			Text:             ch.Text,
			ContentType:      ch.ContentType,
			PageNumber:       ch.PageNumber,
			SectionHierarchy: ch.SectionHierarchy,
			ParagraphIndex:   ch.ParagraphIndex,
			CharStart:        ch.CharStart,
			CharEnd:          ch.CharEnd,
			SourceHash:       doc.SourceHash,
			Embedding:        vectors[i],
			CreatedAt:        now,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, 0, err
	}
	defer uow.Rollback()

	if existing != nil {
		if _, err := uow.ChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
			return uuid.Nil, 0, err
		}
		document.IngestedAt = existing.IngestedAt
		if err := uow.DocumentRepository().Update(ctx, document); err != nil {
			return uuid.Nil, 0, err
		}
	} else {
		if err := uow.DocumentRepository().Create(ctx, document); err != nil {
			return uuid.Nil, 0, err
		}
	}

	if err := uow.ChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
		return uuid.Nil, 0, err
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, 0, err
	}

	attrs := vectorindex.Attributes{DocumentId: documentId, DocumentType: string(docType)}
	for _, oldId := range oldChunkIds {
		if err := s.index.Delete(ctx, oldId); err != nil {
			s.log.Error("document_service", "failed to drop stale vector", map[string]interface{}{
				"chunk_id": oldId,
				"error":    err.Error(),
			})
		}
	}
	for i, ch := range chunkEntities {
		if err := s.index.Upsert(ctx, ch.Id, vectors[i], attrs); err != nil {
			// The chunk row is committed; hydration drops it from results
			// until the next re-ingest repairs the index.
			s.log.Error("document_service", "failed to index chunk", map[string]interface{}{
				"chunk_id": ch.Id,
				"error":    err.Error(),
			})
		}
	}

	return documentId, len(chunkEntities), nil
}

func (s *documentService) List(ctx context.Context, offset, limit int) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "ingested_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.DocumentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = dto.DocumentSummary{
			DocumentId:    d.Id,
			SourcePath:    d.SourcePath,
			DocumentTitle: d.Title,
			DocumentType:  string(d.DocumentType),
			TotalChunks:   d.TotalChunks,
			IngestedAt:    d.IngestedAt.UTC().Format(time.RFC3339),
		}
	}

	return &dto.ListDocumentsResponse{
		Documents: summaries,
		Total:     total,
		Offset:    offset,
		Limit:     limit,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("document not found: %s", id)
	}

	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: id},
		specification.OrderByChunkIndex{},
	)
	if err != nil {
		return nil, err
	}

	return &dto.ShowDocumentResponse{
		DocumentId:    doc.Id,
		SourcePath:    doc.SourcePath,
		DocumentTitle: doc.Title,
		DocumentType:  string(doc.DocumentType),
		TotalChunks:   doc.TotalChunks,
		IngestedAt:    doc.IngestedAt.UTC().Format(time.RFC3339),
		Sections:      extractSections(chunks),
	}, nil
}

// extractSections lists the unique heading paths seen in a document's chunks,
// in first-appearance order, with the page each was first seen on.
func extractSections(chunks []*entity.Chunk) []entity.DocumentSection {
	sections := []entity.DocumentSection{}
	seen := make(map[string]bool)
	for _, ch := range chunks {
		if len(ch.SectionHierarchy) == 0 {
			continue
		}
		key := strings.Join(ch.SectionHierarchy, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		sections = append(sections, entity.DocumentSection{
			Hierarchy:  ch.SectionHierarchy,
			PageNumber: ch.PageNumber,
		})
	}
	return sections
}

func (s *documentService) GetChunks(ctx context.Context, id uuid.UUID, offset, limit int) (*dto.DocumentChunksResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("document not found: %s", id)
	}

	total, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: id})
	if err != nil {
		return nil, err
	}

	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: id},
		specification.OrderByChunkIndex{},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ChunkSummary, len(chunks))
	for i, ch := range chunks {
		var section *string
		if len(ch.SectionHierarchy) > 0 {
			label := strings.Join(ch.SectionHierarchy, " > ")
			section = &label
		}
		summaries[i] = dto.ChunkSummary{
			ChunkId:    ch.Id,
			Text:       ch.Text,
			ChunkIndex: ch.ChunkIndex,
			PageNumber: ch.PageNumber,
			Section:    section,
		}
	}

	return &dto.DocumentChunksResponse{
		DocumentId: id,
		Chunks:     summaries,
		Total:      total,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

func (s *documentService) GetText(ctx context.Context, id uuid.UUID) (*dto.DocumentTextResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("document not found: %s", id)
	}

	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: id},
		specification.OrderByChunkIndex{},
	)
	if err != nil {
		return nil, err
	}

	text := reconstructText(chunks)
	return &dto.DocumentTextResponse{
		DocumentId:    doc.Id,
		DocumentTitle: doc.Title,
		Text:          text,
		WordCount:     len(strings.Fields(text)),
		ChunkCount:    len(chunks),
	}, nil
}

// reconstructText rebuilds the document body from its chunks. Separators are
// re-derived from the gaps between adjacent char ranges: no gap means the
// chunks were cut mid-flow, one character was a newline, anything wider a
// paragraph break.
func reconstructText(chunks []*entity.Chunk) string {
	var sb strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			gap := ch.CharStart - chunks[i-1].CharEnd
			switch {
			case gap <= 0:
				// overlapping or adjacent splits, join directly
			case gap == 1:
				sb.WriteString("\n")
			default:
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(ch.Text)
	}
	return sb.String()
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("document not found: %s", id)
	}

	s.locker.Lock(id)
	defer s.locker.Unlock(id)

	chunkIds, err := uow.ChunkRepository().FindIdsByDocumentId(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	deleted, err := uow.ChunkRepository().DeleteByDocumentId(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	for _, chunkId := range chunkIds {
		if err := s.index.Delete(ctx, chunkId); err != nil {
			s.log.Error("document_service", "failed to drop vector", map[string]interface{}{
				"chunk_id": chunkId,
				"error":    err.Error(),
			})
		}
	}

	s.publishChange(ctx, DocumentChangeMessage{
		DocumentId:    id,
		SourcePath:    doc.SourcePath,
		Change:        "deleted",
		ChunksChanged: deleted,
	})

	return &dto.DeleteDocumentResponse{
		Status:        "deleted",
		DocumentId:    id,
		ChunksDeleted: deleted,
	}, nil
}

func (s *documentService) GetChunk(ctx context.Context, id uuid.UUID) (*dto.ShowChunkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chunk, err := uow.ChunkRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, apperrors.NotFound("chunk not found: %s", id)
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: chunk.DocumentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("document not found: %s", chunk.DocumentId)
	}

	return &dto.ShowChunkResponse{
		ChunkId:  chunk.Id,
		Text:     chunk.Text,
		Metadata: retrieval.BuildMetadata(chunk, doc),
	}, nil
}

func (s *documentService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totalDocs, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	totalChunks, err := uow.ChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := uow.DocumentRepository().CountByType(ctx)
	if err != nil {
		return nil, err
	}

	typeMap := make(map[string]int64, len(byType))
	for _, row := range byType {
		typeMap[row.DocumentType] = row.Count
	}

	avg := 0.0
	if totalDocs > 0 {
		avg = float64(totalChunks) / float64(totalDocs)
	}

	return &dto.StatsResponse{
		TotalDocuments:  totalDocs,
		TotalChunks:     totalChunks,
		DocumentsByType: typeMap,
		AvgChunksPerDoc: avg,
	}, nil
}

// publishChange notifies the in-process change topic. Failures are logged and
// swallowed: the write already committed, subscribers catch up on TTL expiry.
func (s *documentService) publishChange(ctx context.Context, msg DocumentChangeMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("document_service", "failed to publish document change", map[string]interface{}{
			"document_id": msg.DocumentId,
			"error":       err.Error(),
		})
	}
}

func titleFromPath(sourcePath string) string {
	base := sourcePath
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		return sourcePath
	}
	return base
}
