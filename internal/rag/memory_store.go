package rag

import (
	"context"
	"sort"
	"strings"

	"ragchat/internal/core"
	"ragchat/internal/logger"
)

// MemoryStore is an in-memory core.VectorStore used for offline runs and
// tests. Instead of embeddings it scores chunks by term overlap with the
// query, which is deterministic and needs no external services.
type MemoryStore struct {
	created bool
	chunks  map[string]core.DocumentChunk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]core.DocumentChunk)}
}

// EnsureCollection marks the collection as created.
func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	if !s.created {
		logger.Debug("Memory store: collection created")
	}
	s.created = true
	return nil
}

// DropCollection discards all stored chunks.
func (s *MemoryStore) DropCollection(ctx context.Context) error {
	s.created = false
	s.chunks = make(map[string]core.DocumentChunk)
	return nil
}

// UpsertChunks stores the chunks keyed by ID, overwriting matching keys.
func (s *MemoryStore) UpsertChunks(ctx context.Context, chunks []core.DocumentChunk) error {
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	logger.Debug("Memory store: upserted %d chunks (%d total)", len(chunks), len(s.chunks))
	return nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int { return len(s.chunks) }

// Search scores every stored chunk by the fraction of query terms it
// contains and returns the topK best matches, zero-score chunks excluded.
func (s *MemoryStore) Search(ctx context.Context, query string, topK int) ([]core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var results []core.SearchResult
	for _, chunk := range s.chunks {
		content := strings.ToLower(chunk.Content)
		matched := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		score := float32(matched) / float32(len(terms))
		results = append(results, core.SearchResult{Chunk: chunk, Score: &score})
	}

	// Order by descending score, chunk ID as a deterministic tie-break.
	sort.Slice(results, func(i, j int) bool {
		if *results[i].Score != *results[j].Score {
			return *results[i].Score > *results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
