package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Chunking ChunkingConfig
	Search   SearchConfig
	Wiki     WikiConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	ChangeTopic        string // in-process document change topic
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini" or "ollama"
	EmbeddingDimension int    // must match the model's output and the chunks.embedding column (cmd/migrate resizes it)
	OllamaBaseURL      string
	OllamaModel        string
	GeminiAPIKey       string
	VectorBackend      string // "memory" or "pgvector"
}

type ChunkingConfig struct {
	TargetSize int
	MinSize    int
	MaxSize    int
	Overlap    int
}

type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type WikiConfig struct {
	MaxSources    int
	MinScore      float64
	CacheTTLMins  int
	DefaultFormat string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			ChangeTopic:        getEnv("DOCUMENT_CHANGE_TOPIC_NAME", "DOCUMENT_CHANGED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			VectorBackend:      getEnv("VECTOR_BACKEND", "memory"),
		},
		Chunking: ChunkingConfig{
			TargetSize: getEnvAsInt("CHUNK_TARGET_SIZE", 1000),
			MinSize:    getEnvAsInt("CHUNK_MIN_SIZE", 100),
			MaxSize:    getEnvAsInt("CHUNK_MAX_SIZE", 2000),
			Overlap:    getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),
		},
		Wiki: WikiConfig{
			MaxSources:    getEnvAsInt("WIKI_MAX_SOURCES", 10),
			MinScore:      getEnvAsFloat("WIKI_MIN_SCORE", 0.3),
			CacheTTLMins:  getEnvAsInt("WIKI_CACHE_TTL_MINUTES", 15),
			DefaultFormat: getEnv("WIKI_DEFAULT_FORMAT", "markdown"),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
