package service

import (
	"context"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/pkg/retrieval"

	"github.com/google/uuid"
)

type ISearchService interface {
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Similar(ctx context.Context, chunkId uuid.UUID, limit int) ([]entity.SearchResult, error)
	Context(ctx context.Context, chunkId uuid.UUID, window int) (*dto.ChunkContextResponse, error)
}

type searchService struct {
	retriever *retrieval.Retriever
}

func NewSearchService(retriever *retrieval.Retriever) ISearchService {
	return &searchService{
		retriever: retriever,
	}
}

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	documentIds := make([]uuid.UUID, 0, len(req.DocumentIds))
	for _, raw := range req.DocumentIds {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.InvalidArgument("invalid document id: %s", raw)
		}
		documentIds = append(documentIds, id)
	}

	res, err := s.retriever.Search(ctx, retrieval.Query{
		Query:         req.Query,
		Limit:         req.Limit,
		MinScore:      req.MinScore,
		DocumentIds:   documentIds,
		DocumentTypes: req.DocumentTypes,
	})
	if err != nil {
		return nil, err
	}

	return &dto.SearchResponse{
		Query:        res.Query,
		Results:      res.Results,
		TotalResults: res.TotalResults,
		SearchTimeMs: res.SearchTimeMs,
	}, nil
}

// Similar returns the ranked results as a bare list; the route serializes
// them without an envelope.
func (s *searchService) Similar(ctx context.Context, chunkId uuid.UUID, limit int) ([]entity.SearchResult, error) {
	return s.retriever.Similar(ctx, chunkId, limit)
}

func (s *searchService) Context(ctx context.Context, chunkId uuid.UUID, window int) (*dto.ChunkContextResponse, error) {
	res, err := s.retriever.Context(ctx, chunkId, window)
	if err != nil {
		return nil, err
	}

	contextChunks := make([]dto.ContextChunk, len(res.Context))
	for i, ch := range res.Context {
		contextChunks[i] = dto.ContextChunk{
			Id:       ch.Id,
			Text:     ch.Text,
			Index:    ch.ChunkIndex,
			IsTarget: ch.Id == res.Target.Id,
		}
	}

	return &dto.ChunkContextResponse{
		TargetChunk: dto.TargetChunk{
			Id:    res.Target.Id,
			Text:  res.Target.Text,
			Index: res.Target.ChunkIndex,
		},
		Context:       contextChunks,
		DocumentId:    res.Document.Id,
		DocumentTitle: res.Document.Title,
	}, nil
}
