package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/core"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureCollection(context.Background()))
	require.NoError(t, s.UpsertChunks(context.Background(), []core.DocumentChunk{
		{ID: "doc-0000", Content: "the quick brown fox", Source: "doc.txt", ChunkIndex: 0},
		{ID: "doc-0001", Content: "jumps over the lazy dog", Source: "doc.txt", ChunkIndex: 1},
		{ID: "doc-0002", Content: "entirely unrelated content", Source: "doc.txt", ChunkIndex: 2},
	}))
	return s
}

func TestMemoryStore_SearchRanksByOverlap(t *testing.T) {
	s := seedStore(t)

	results, err := s.Search(context.Background(), "quick brown fox", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "doc-0000", results[0].Chunk.ID)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 1.0, float64(*results[0].Score), 1e-6)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, *results[i-1].Score, *results[i].Score)
	}
}

func TestMemoryStore_SearchNoMatches(t *testing.T) {
	s := seedStore(t)

	results, err := s.Search(context.Background(), "zzz qqq", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStore_SearchHonorsTopK(t *testing.T) {
	s := seedStore(t)

	results, err := s.Search(context.Background(), "the", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemoryStore_UpsertOverwritesByID(t *testing.T) {
	s := seedStore(t)
	require.Equal(t, 3, s.Len())

	require.NoError(t, s.UpsertChunks(context.Background(), []core.DocumentChunk{
		{ID: "doc-0000", Content: "replacement text", Source: "doc.txt", ChunkIndex: 0},
	}))
	assert.Equal(t, 3, s.Len(), "upsert with matching key must overwrite, not duplicate")

	results, err := s.Search(context.Background(), "replacement", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "replacement text", results[0].Chunk.Content)
}

func TestMemoryStore_DropClears(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.DropCollection(context.Background()))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_SearchObservesCancellation(t *testing.T) {
	s := seedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "fox", 5)
	assert.ErrorIs(t, err, context.Canceled)
}
