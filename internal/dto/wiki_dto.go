package dto

import (
	"wiki-craft-be/internal/entity"
	"wiki-craft-be/pkg/wiki"
)

type WikiGenerateRequest struct {
	Query          string `json:"query" validate:"required"`
	MaxSources     int    `json:"max_sources" validate:"omitempty,min=1,max=50"`
	OutputFormat   string `json:"output_format" validate:"omitempty,oneof=markdown html text structured"`
	IncludeSources *bool  `json:"include_sources"`
}

type WikiGenerateResponse struct {
	Entry   *entity.WikiEntry `json:"entry"`
	Content string            `json:"content"`
	Format  string            `json:"format"`
}

type WikiSectionRequest struct {
	Topic      string `json:"topic" validate:"required"`
	Context    string `json:"context"`
	MaxSources int    `json:"max_sources" validate:"omitempty,min=1,max=20"`
}

type WikiSectionResponse struct {
	Heading    string              `json:"heading"`
	Content    string              `json:"content"`
	Confidence float64             `json:"confidence"`
	Sources    []entity.WikiSource `json:"sources"`
}

type WikiCompareRequest struct {
	Query        string `json:"query" validate:"required"`
	MaxPerSource int    `json:"max_per_source" validate:"omitempty,min=1,max=10"`
}

type WikiCompareResponse struct {
	Query       string                    `json:"query"`
	Sources     []wiki.DocumentComparison `json:"sources"`
	SourceCount int                       `json:"source_count"`
}

type WikiTopicsResponse struct {
	Topics []string `json:"topics"`
	Total  int      `json:"total"`
}
