package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Keys        APIKeys
	Ai          AIConfig
	VectorStore VectorStoreConfig
	Database    DatabaseConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type APIKeys struct {
	OpenAI      string
	IngestTopic string // Case embedding topic
}

type AIConfig struct {
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string // e.g. "gpt-4"
	TopK              int
	EmbedBatchSize    int
	EmbedBatchDelay   time.Duration
}

type VectorStoreConfig struct {
	Provider       string // "chroma", "pgvector" or "memory"
	CollectionName string
	ChromaURL      string
}

type DatabaseConfig struct {
	Connection string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			IngestTopic: getEnv("EMBED_CASE_CONTENT_TOPIC_NAME", "EMBED_CASE_CONTENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4"),
			TopK:              getEnvAsInt("RAG_TOP_K", 5),
			EmbedBatchSize:    getEnvAsInt("EMBED_BATCH_SIZE", 100),
			EmbedBatchDelay:   getEnvAsDuration("EMBED_BATCH_DELAY", 100*time.Millisecond),
		},
		VectorStore: VectorStoreConfig{
			Provider:       getEnv("VECTOR_STORE_PROVIDER", "chroma"),
			CollectionName: getEnv("VECTOR_STORE_COLLECTION", "medical_cases"),
			ChromaURL:      getEnv("CHROMA_URL", "http://localhost:8001"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
