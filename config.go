package ragpod

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the recognized configuration surface. Values come from the
// environment, with a .env file loaded first when present.
type Config struct {
	// LLM settings
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModelName string

	// Embedding settings
	EmbeddingAPIKey    string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDim       int

	// Vector index settings
	MilvusURI        string
	MilvusToken      string
	MilvusCollection string

	// Relational store settings
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresAppName  string
	PostgresPoolMin  int
	PostgresPoolMax  int

	// Ingestion settings (not used by the turn path)
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int

	// Retrieval settings
	TopK int

	// Turn settings. MaxToolHops of 0 disables the hop guard.
	MaxToolHops int

	// Server settings
	ListenAddr string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, falling back to environment variables")
	}

	return &Config{
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMBaseURL:   getEnv("LLM_BASE_URL", ""),
		LLMModelName: getEnv("LLM_MODEL_NAME", "gpt-4o-mini"),

		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingDim:       getEnvInt("EMBEDDING_DIM", 1536),

		MilvusURI:        getEnv("MILVUS_URI", "localhost:19530"),
		MilvusToken:      getEnv("MILVUS_TOKEN", ""),
		MilvusCollection: getEnv("MILVUS_COLLECTION_NAME", "rag_agent"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "postgres"),
		PostgresAppName:  getEnv("POSTGRES_APPLICATION_NAME", "ragpod"),
		PostgresPoolMin:  getEnvInt("POSTGRES_MIN_CONNECTIONS_PER_POOL", 1),
		PostgresPoolMax:  getEnvInt("POSTGRES_MAX_CONNECTIONS_PER_POOL", 10),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		BatchSize:    getEnvInt("BATCH_SIZE", 64),

		TopK: getEnvInt("RETRIEVAL_TOP_K", 5),

		MaxToolHops: getEnvInt("RAG_MAX_TOOL_HOPS", 8),

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using default %d", key, fallback)
		return fallback
	}
	return parsed
}
