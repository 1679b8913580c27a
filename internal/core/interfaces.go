package core

import "context"

// EmbedService defines the interface for turning text into an embedding vector.
type EmbedService interface {
	// EmbedQuery generates an embedding for the given text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore defines the interface for the vector collection backing retrieval.
// Implementations handle embedding internally: callers hand over chunk text or
// a raw query string and never see vectors.
type VectorStore interface {
	// EnsureCollection creates the backing collection if it does not exist.
	// Safe to call repeatedly.
	EnsureCollection(ctx context.Context) error

	// DropCollection removes the backing collection and everything in it.
	// Dropping a collection that does not exist is not an error.
	DropCollection(ctx context.Context) error

	// UpsertChunks writes the given chunks in one batch, keyed by chunk ID,
	// overwriting any records with matching keys.
	UpsertChunks(ctx context.Context, chunks []DocumentChunk) error

	// Search returns up to topK results ordered by descending relevance.
	// An empty result list is a valid outcome, not an error.
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// ChatService defines the interface for requesting a chat completion.
type ChatService interface {
	// Complete sends the ordered messages to the model and returns its reply text.
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
