package main

import (
	"context"
	"log"

	"wiki-craft-be/internal/config"
	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/pkg/logger"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/repository/unitofwork"
	"wiki-craft-be/internal/service"
	"wiki-craft-be/pkg/chunker"
	"wiki-craft-be/pkg/database"
	"wiki-craft-be/pkg/embedding"
	memindex "wiki-craft-be/pkg/vectorindex/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
)

// Seeds a few sample documents through the full ingest path so a fresh
// install has something to search and synthesize against. Requires a
// reachable embedding provider.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}
	provider = embedding.NewRetryingProvider(provider)

	// Embeddings persist on the chunk rows; the live index is rebuilt at
	// server boot, so a throwaway one is enough here.
	index, err := memindex.NewIndex(cfg.Ai.EmbeddingDimension)
	if err != nil {
		log.Fatal("Error: Failed to create index:", err)
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	documentService := service.NewDocumentService(
		uowFactory,
		chunker.New(chunker.Config{
			TargetSize: cfg.Chunking.TargetSize,
			MinSize:    cfg.Chunking.MinSize,
			MaxSize:    cfg.Chunking.MaxSize,
			Overlap:    cfg.Chunking.Overlap,
		}),
		provider,
		index,
		serverutils.NewDocumentLocker(),
		service.NewPublisherService(cfg.App.ChangeTopic, pubSub),
		sysLogger,
	)

	color.Cyan("Seeding sample documents...")

	results, err := documentService.Ingest(context.Background(), &dto.IngestRequest{
		Documents: sampleDocuments(),
	})
	if err != nil {
		log.Fatal("Error: Ingest failed:", err)
	}

	for _, res := range results {
		if res.Status == "success" {
			color.Green("  ✓ %s (%d chunks)", res.Filename, res.ChunksCreated)
		} else {
			color.Red("  ✗ %s: %v", res.Filename, res.Errors)
		}
	}

	color.Cyan("Seeding completed!")
}

func page(n int) *int { return &n }

func sampleDocuments() []dto.IngestDocument {
	return []dto.IngestDocument{
		{
			SourcePath:   "samples/water-cycle.md",
			Title:        "The Water Cycle",
			DocumentType: "markdown",
			Blocks: []dto.IngestBlock{
				{Text: "The Water Cycle", ContentType: "heading", SectionHierarchy: []string{"The Water Cycle"}},
				{Text: "The water cycle describes the continuous movement of water within the Earth and atmosphere. Water evaporates from oceans and lakes, condenses into clouds, and returns to the surface as precipitation.", ContentType: "paragraph", SectionHierarchy: []string{"The Water Cycle"}},
				{Text: "Evaporation", ContentType: "heading", SectionHierarchy: []string{"The Water Cycle", "Evaporation"}},
				{Text: "Solar energy drives evaporation from open water surfaces. Warmer temperatures increase the rate at which liquid water becomes vapor, feeding moisture into the lower atmosphere.", ContentType: "paragraph", SectionHierarchy: []string{"The Water Cycle", "Evaporation"}},
				{Text: "Precipitation", ContentType: "heading", SectionHierarchy: []string{"The Water Cycle", "Precipitation"}},
				{Text: "When atmospheric moisture condenses around particles and grows heavy enough, it falls as rain, snow, sleet, or hail. Precipitation replenishes rivers, lakes, and groundwater reserves.", ContentType: "paragraph", SectionHierarchy: []string{"The Water Cycle", "Precipitation"}},
			},
		},
		{
			SourcePath:   "samples/rivers.pdf",
			Title:        "River Systems",
			DocumentType: "pdf",
			Blocks: []dto.IngestBlock{
				{Text: "River Systems", ContentType: "heading", PageNumber: page(1), SectionHierarchy: []string{"River Systems"}},
				{Text: "A river system is a network of streams and tributaries that drain a watershed. Headwaters collect precipitation and snowmelt, and the main channel carries the combined flow toward the sea.", ContentType: "paragraph", PageNumber: page(1), SectionHierarchy: []string{"River Systems"}},
				{Text: "Erosion and Deposition", ContentType: "heading", PageNumber: page(2), SectionHierarchy: []string{"River Systems", "Erosion and Deposition"}},
				{Text: "Flowing water erodes its banks and bed, transporting sediment downstream. Where the current slows, sediment settles out, building floodplains and deltas over time.", ContentType: "paragraph", PageNumber: page(2), SectionHierarchy: []string{"River Systems", "Erosion and Deposition"}},
			},
		},
	}
}
