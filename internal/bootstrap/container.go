package bootstrap

import (
	"context"
	"log"

	"reasonmed-be/internal/config"
	"reasonmed-be/internal/controller"
	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/internal/service"
	"reasonmed-be/pkg/database"
	"reasonmed-be/pkg/embedding"
	"reasonmed-be/pkg/llm/factory"
	"reasonmed-be/pkg/rag"
	"reasonmed-be/pkg/vectorstore"
	"reasonmed-be/pkg/vectorstore/chroma"
	"reasonmed-be/pkg/vectorstore/memory"
	"reasonmed-be/pkg/vectorstore/pgvector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	RagController  controller.IRagController
	CaseController controller.ICaseController

	// Core Components (Exposed for cmd/ingest)
	Embedder *embedding.Service
	Store    vectorstore.Store

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := newEmbeddingProvider(cfg)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	embedder := embedding.NewService(embeddingProvider, sysLogger)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Vector Store
	store := newVectorStore(cfg)
	log.Printf("[INFO] Using Vector Store: %s (collection %s)", cfg.VectorStore.Provider, cfg.VectorStore.CollectionName)

	// 5. RAG Core
	retriever := rag.NewRetriever(embedder, store, sysLogger)
	generator := rag.NewGenerator(llmProvider)
	pipeline, err := rag.NewPipeline(retriever, generator, cfg.Ai.TopK, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize RAG Pipeline: %v", err)
	}

	// 6. Services
	ragService := service.NewRagService(pipeline, store, cfg.VectorStore.CollectionName, sysLogger)
	ingestService := service.NewIngestService(pubSub, cfg.Keys.IngestTopic, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		embedder,
		store,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		RagController:  controller.NewRagController(ragService),
		CaseController: controller.NewCaseController(ingestService),

		Embedder: embedder,
		Store:    store,

		ConsumerService: consumerService,
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.Provider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	default:
		provider, err := embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
		}
		return provider
	}
}

func newVectorStore(cfg *config.Config) vectorstore.Store {
	switch cfg.VectorStore.Provider {
	case "pgvector":
		gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
		}
		store := pgvector.NewStore(gormDB)
		if err := store.Migrate(context.Background()); err != nil {
			log.Fatalf("[FATAL] Failed to migrate vector store: %v", err)
		}
		return store
	case "memory":
		return memory.NewStore()
	default:
		store, err := chroma.NewStore(context.Background(), cfg.VectorStore.ChromaURL, cfg.VectorStore.CollectionName)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Chroma: %v", err)
		}
		return store
	}
}
