// Package ingest reads a source document, chunks it, and persists the
// chunks into the vector store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ragchat/internal/chunker"
	"ragchat/internal/core"
	"ragchat/internal/logger"
)

// Params holds the already-validated inputs for one ingestion run.
type Params struct {
	FilePath     string
	ChunkSize    int
	ChunkOverlap int

	// RecreateCollection drops the existing collection before ingesting.
	// Destructive: every previously stored chunk is discarded, not just
	// the ones whose keys match.
	RecreateCollection bool
}

// Pipeline ingests a document into a vector store.
type Pipeline struct {
	store core.VectorStore
}

// NewPipeline creates an ingestion pipeline backed by the given store.
func NewPipeline(store core.VectorStore) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest runs one ingestion pass and returns the number of chunks written.
// Re-running on an unchanged file produces identical chunk IDs, so the
// batched upsert overwrites rather than duplicates.
func (p *Pipeline) Ingest(ctx context.Context, params Params) (int, error) {
	if _, err := os.Stat(params.FilePath); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: input file %s", core.ErrNotFound, params.FilePath)
		}
		return 0, fmt.Errorf("failed to stat input file %s: %w", params.FilePath, err)
	}

	if params.RecreateCollection {
		logger.Info("RecreateCollection is enabled: dropping the existing collection and all stored chunks")
		if err := p.store.DropCollection(ctx); err != nil {
			return 0, err
		}
	}

	if err := p.store.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(params.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read input file %s: %w", params.FilePath, err)
	}

	chunks, err := chunker.Split(string(data), params.ChunkSize, params.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	if len(chunks) == 0 {
		logger.Warn("No content extracted from %s; skipping ingestion", params.FilePath)
		return 0, nil
	}

	sourceName := filepath.Base(params.FilePath)
	records := make([]core.DocumentChunk, 0, len(chunks))
	for i, content := range chunks {
		records = append(records, core.DocumentChunk{
			ID:         chunker.ChunkID(sourceName, i),
			Content:    content,
			Source:     sourceName,
			ChunkIndex: i,
		})
	}

	if err := p.store.UpsertChunks(ctx, records); err != nil {
		return 0, err
	}

	logger.Info("Ingested %d chunks from %s", len(records), params.FilePath)
	return len(records), nil
}
