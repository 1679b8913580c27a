// Package config loads and validates the application configuration from
// environment variables. Values are validated here, before the core runs,
// so downstream components receive already-checked parameters.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSystemPrompt is used when RAG_SYSTEM_PROMPT is not set.
const DefaultSystemPrompt = "You are a helpful assistant. Answer strictly from the provided context snippets. " +
	"If the context does not contain the answer, say you do not know."

// Config represents the application configuration.
type Config struct {
	// Ingestion
	InputFile          string
	ChunkSize          int
	ChunkOverlap       int
	RecreateCollection bool

	// Retrieval / conversation
	TopK         int
	SystemPrompt string

	// Vector store
	MilvusAddr   string
	Collection   string
	EmbeddingDim int
	MockStore    bool

	// Providers
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingAPIKey  string
	OpenRouterAPIKey string
	OpenRouterModel  string
}

// Load reads configuration from environment variables, applying defaults
// for everything optional.
func Load() *Config {
	return &Config{
		InputFile:          os.Getenv("RAG_INPUT_FILE"),
		ChunkSize:          getEnvInt("RAG_CHUNK_SIZE", 1024),
		ChunkOverlap:       getEnvInt("RAG_CHUNK_OVERLAP", 128),
		RecreateCollection: getEnvBool("RAG_RECREATE_COLLECTION", false),
		TopK:               getEnvInt("RAG_TOP_K", 5),
		SystemPrompt:       getEnvWithDefault("RAG_SYSTEM_PROMPT", DefaultSystemPrompt),
		MilvusAddr:         getEnvWithDefault("MILVUS_ADDR", "localhost:19530"),
		Collection:         getEnvWithDefault("MILVUS_COLLECTION", "documents"),
		EmbeddingDim:       getEnvInt("EMBEDDING_DIM", 1536),
		MockStore:          getEnvBool("RAG_MOCK_STORE", false),
		EmbeddingBaseURL:   getEnvWithDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModel:     getEnvWithDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:    getEnvWithDefault("OPENROUTER_MODEL", "meta-llama/llama-3-70b-instruct"),
	}
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("RAG_INPUT_FILE is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("RAG_CHUNK_SIZE must be greater than zero, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("RAG_CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be greater than zero, got %d", c.TopK)
	}
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
	}
	if !c.MockStore && c.EmbeddingAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required unless RAG_MOCK_STORE is set")
	}
	return nil
}

// getEnvWithDefault gets an environment variable or returns a default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer environment variable, falling back to the
// default on absence or parse failure.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvBool parses a boolean environment variable, falling back to the
// default on absence or parse failure.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
