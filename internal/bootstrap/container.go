package bootstrap

import (
	"context"
	"log"
	"time"

	"wiki-craft-be/internal/config"
	"wiki-craft-be/internal/controller"
	"wiki-craft-be/internal/pkg/logger"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/repository/memory"
	"wiki-craft-be/internal/repository/specification"
	"wiki-craft-be/internal/repository/unitofwork"
	"wiki-craft-be/internal/service"
	"wiki-craft-be/pkg/chunker"
	"wiki-craft-be/pkg/embedding"
	"wiki-craft-be/pkg/retrieval"
	"wiki-craft-be/pkg/vectorindex"
	memindex "wiki-craft-be/pkg/vectorindex/memory"
	"wiki-craft-be/pkg/vectorindex/pgvector"
	"wiki-craft-be/pkg/wiki"

	pktNats "wiki-craft-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController
	WikiController     controller.IWikiController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}
	embeddingProvider = embedding.NewRetryingProvider(embeddingProvider)

	// 4. Vector Index
	var index vectorindex.Index
	if cfg.Ai.VectorBackend == "pgvector" {
		pgIndex, err := pgvector.NewIndex(db, cfg.Ai.EmbeddingDimension)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector index: %v", err)
		}
		index = pgIndex
		log.Printf("[INFO] Using Vector Backend: PGVECTOR (%d dims)", cfg.Ai.EmbeddingDimension)
	} else {
		memIndex, err := memindex.NewIndex(cfg.Ai.EmbeddingDimension)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize in-memory index: %v", err)
		}
		if err := rehydrateIndex(db, uowFactory, memIndex); err != nil {
			log.Fatalf("[FATAL] Failed to rehydrate in-memory index: %v", err)
		}
		index = memIndex
		log.Printf("[INFO] Using Vector Backend: MEMORY (%d dims)", cfg.Ai.EmbeddingDimension)
	}

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	wikiCache := memory.NewWikiCacheRepository(time.Duration(cfg.Wiki.CacheTTLMins) * time.Minute)
	locker := serverutils.NewDocumentLocker()

	publisherService := service.NewPublisherService(cfg.App.ChangeTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ChangeTopic,
		wikiCache,
		natsPub,
	)

	// 6. Domain
	chk := chunker.New(chunker.Config{
		TargetSize: cfg.Chunking.TargetSize,
		MinSize:    cfg.Chunking.MinSize,
		MaxSize:    cfg.Chunking.MaxSize,
		Overlap:    cfg.Chunking.Overlap,
	})

	uow := uowFactory.NewUnitOfWork(context.Background())
	retriever := retrieval.New(
		index,
		embeddingProvider,
		uow.ChunkRepository(),
		uow.DocumentRepository(),
		retrieval.Options{
			DefaultLimit: cfg.Search.DefaultLimit,
			MaxLimit:     cfg.Search.MaxLimit,
		},
	)

	synthesizer := wiki.NewSynthesizer(retriever, wiki.Options{
		MaxSources: cfg.Wiki.MaxSources,
		MinScore:   cfg.Wiki.MinScore,
	})

	// 7. Services
	documentService := service.NewDocumentService(
		uowFactory,
		chk,
		embeddingProvider,
		index,
		locker,
		publisherService,
		sysLogger,
	)
	searchService := service.NewSearchService(retriever)
	wikiService := service.NewWikiService(synthesizer, wikiCache, uowFactory, cfg.Wiki.DefaultFormat)

	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		SearchController:   controller.NewSearchController(searchService),
		WikiController:     controller.NewWikiController(wikiService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}

// rehydrateIndex reloads every stored chunk embedding into the in-memory
// index at boot. The chunk table is the source of truth; the index is a
// rebuildable projection of it.
func rehydrateIndex(db *gorm.DB, uowFactory unitofwork.RepositoryFactory, index vectorindex.Index) error {
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	const batchSize = 500
	offset := 0
	loaded := 0
	for {
		chunks, err := uow.ChunkRepository().FindAll(ctx,
			specification.OrderBy{Field: "created_at", Desc: false},
			specification.OrderBy{Field: "id", Desc: false},
			specification.Pagination{Limit: batchSize, Offset: offset},
		)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			break
		}
		for _, ch := range chunks {
			if len(ch.Embedding) == 0 {
				continue
			}
			attrs := vectorindex.Attributes{
				DocumentId:   ch.DocumentId,
				DocumentType: string(ch.DocumentType),
			}
			if err := index.Upsert(ctx, ch.Id, ch.Embedding, attrs); err != nil {
				return err
			}
			loaded++
		}
		offset += batchSize
	}

	if loaded > 0 {
		log.Printf("[INFO] Rehydrated %d chunk vectors into memory", loaded)
	}
	return nil
}
