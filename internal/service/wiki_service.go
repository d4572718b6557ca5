package service

import (
	"context"
	"sort"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/repository/memory"
	"wiki-craft-be/internal/repository/specification"
	"wiki-craft-be/internal/repository/unitofwork"
	"wiki-craft-be/pkg/wiki"
)

type IWikiService interface {
	Generate(ctx context.Context, req *dto.WikiGenerateRequest) (*dto.WikiGenerateResponse, error)
	Section(ctx context.Context, req *dto.WikiSectionRequest) (*dto.WikiSectionResponse, error)
	Compare(ctx context.Context, req *dto.WikiCompareRequest) (*dto.WikiCompareResponse, error)
	Topics(ctx context.Context, limit int) (*dto.WikiTopicsResponse, error)
}

type wikiService struct {
	synthesizer   *wiki.Synthesizer
	cache         *memory.WikiCacheRepository
	uowFactory    unitofwork.RepositoryFactory
	defaultFormat string
}

func NewWikiService(
	synthesizer *wiki.Synthesizer,
	cache *memory.WikiCacheRepository,
	uowFactory unitofwork.RepositoryFactory,
	defaultFormat string,
) IWikiService {
	if defaultFormat == "" {
		defaultFormat = wiki.FormatMarkdown
	}
	return &wikiService{
		synthesizer:   synthesizer,
		cache:         cache,
		uowFactory:    uowFactory,
		defaultFormat: defaultFormat,
	}
}

// Generate synthesizes an entry for the query, reusing a cached entry when
// the same query was answered recently. Rendering always runs fresh so the
// cache stays format-agnostic.
func (s *wikiService) Generate(ctx context.Context, req *dto.WikiGenerateRequest) (*dto.WikiGenerateResponse, error) {
	format := req.OutputFormat
	if format == "" {
		format = s.defaultFormat
	}
	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	key := memory.Key(req.Query, req.MaxSources)
	entry, found := s.cache.Get(key)
	if !found {
		var err error
		entry, err = s.synthesizer.Generate(ctx, req.Query, req.MaxSources)
		if err != nil {
			return nil, err
		}
		s.cache.Save(key, entry)
	}

	content, err := wiki.Render(entry, format, includeSources)
	if err != nil {
		return nil, err
	}

	return &dto.WikiGenerateResponse{
		Entry:   entry,
		Content: content,
		Format:  format,
	}, nil
}

func (s *wikiService) Section(ctx context.Context, req *dto.WikiSectionRequest) (*dto.WikiSectionResponse, error) {
	section, err := s.synthesizer.GenerateSection(ctx, req.Topic, req.Context, req.MaxSources)
	if err != nil {
		return nil, err
	}

	sources := section.Sources
	if sources == nil {
		sources = []entity.WikiSource{}
	}

	return &dto.WikiSectionResponse{
		Heading:    section.Heading,
		Content:    section.Content,
		Confidence: section.Confidence,
		Sources:    sources,
	}, nil
}

func (s *wikiService) Compare(ctx context.Context, req *dto.WikiCompareRequest) (*dto.WikiCompareResponse, error) {
	sources, err := s.synthesizer.Compare(ctx, req.Query, req.MaxPerSource)
	if err != nil {
		return nil, err
	}

	return &dto.WikiCompareResponse{
		Query:       req.Query,
		Sources:     sources,
		SourceCount: len(sources),
	}, nil
}

// Topics suggests entry subjects from what is indexed: every document title,
// plus section headings from a handful of documents. Headings of five
// characters or fewer are noise ("1.2", "Q&A") and skipped.
func (s *wikiService) Topics(ctx context.Context, limit int) (*dto.WikiTopicsResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "ingested_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	topics := make(map[string]bool)
	for _, doc := range docs {
		if doc.Title != "" {
			topics[doc.Title] = true
		}
	}

	sectionDocs := docs
	if len(sectionDocs) > 10 {
		sectionDocs = sectionDocs[:10]
	}
	for _, doc := range sectionDocs {
		chunks, err := uow.ChunkRepository().FindAll(ctx,
			specification.ByDocumentID{DocumentID: doc.Id},
			specification.OrderByChunkIndex{},
		)
		if err != nil {
			return nil, err
		}
		for _, ch := range chunks {
			for _, section := range ch.SectionHierarchy {
				if len(section) > 5 {
					topics[section] = true
				}
			}
		}
	}

	sorted := make([]string, 0, len(topics))
	for topic := range topics {
		sorted = append(sorted, topic)
	}
	sort.Strings(sorted)

	total := len(sorted)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return &dto.WikiTopicsResponse{
		Topics: sorted,
		Total:  total,
	}, nil
}
