package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/core"
	"ragchat/internal/rag"
)

// recordingStore captures calls so tests can assert on pipeline behavior.
type recordingStore struct {
	dropped   int
	ensured   int
	upserts   [][]core.DocumentChunk
	dropErr   error
	ensureErr error
	upsertErr error
}

func (s *recordingStore) EnsureCollection(ctx context.Context) error {
	s.ensured++
	return s.ensureErr
}

func (s *recordingStore) DropCollection(ctx context.Context) error {
	s.dropped++
	return s.dropErr
}

func (s *recordingStore) UpsertChunks(ctx context.Context, chunks []core.DocumentChunk) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, chunks)
	return nil
}

func (s *recordingStore) Search(ctx context.Context, query string, topK int) ([]core.SearchResult, error) {
	return nil, nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My Doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngest_MissingFile(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store)

	_, err := p.Ingest(context.Background(), Params{FilePath: "/does/not/exist.txt", ChunkSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Zero(t, store.ensured, "the store must not be touched when the file is missing")
}

func TestIngest_EmptyFileWritesNothing(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store)

	count, err := p.Ingest(context.Background(), Params{FilePath: writeTempFile(t, "   \n  "), ChunkSize: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 1, store.ensured)
	assert.Empty(t, store.upserts, "an empty document is valid but yields no upsert")
}

func TestIngest_BuildsContiguousChunks(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store)

	count, err := p.Ingest(context.Background(), Params{
		FilePath:     writeTempFile(t, "hello world, this is a test document."),
		ChunkSize:    10,
		ChunkOverlap: 2,
	})
	require.NoError(t, err)
	require.Len(t, store.upserts, 1, "exactly one batched upsert")

	records := store.upserts[0]
	assert.Equal(t, count, len(records))
	require.Greater(t, len(records), 1)

	for i, rec := range records {
		assert.Equal(t, i, rec.ChunkIndex, "chunk indexes must be contiguous from zero")
		assert.Equal(t, "My Doc.txt", rec.Source)
		assert.NotEmpty(t, rec.Content)
	}
	assert.Equal(t, "my_doc-0000", records[0].ID)
	assert.Equal(t, "my_doc-0001", records[1].ID)
}

func TestIngest_RecreateDropsFirst(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store)

	_, err := p.Ingest(context.Background(), Params{
		FilePath:           writeTempFile(t, "content"),
		ChunkSize:          100,
		RecreateCollection: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.dropped)
	assert.Equal(t, 1, store.ensured)
}

func TestIngest_NoDropWithoutRecreate(t *testing.T) {
	store := &recordingStore{}
	p := NewPipeline(store)

	_, err := p.Ingest(context.Background(), Params{FilePath: writeTempFile(t, "content"), ChunkSize: 100})
	require.NoError(t, err)
	assert.Zero(t, store.dropped)
}

func TestIngest_StoreFailureAborts(t *testing.T) {
	storeErr := &core.StoreError{Op: "upsert", Err: errors.New("milvus down")}
	store := &recordingStore{upsertErr: storeErr}
	p := NewPipeline(store)

	_, err := p.Ingest(context.Background(), Params{FilePath: writeTempFile(t, "content"), ChunkSize: 100})
	require.Error(t, err)

	var se *core.StoreError
	assert.ErrorAs(t, err, &se)
}

func TestIngest_Idempotent(t *testing.T) {
	store := rag.NewMemoryStore()
	p := NewPipeline(store)
	path := writeTempFile(t, "the same document text, twice ingested without change")
	params := Params{FilePath: path, ChunkSize: 16, ChunkOverlap: 4}

	first, err := p.Ingest(context.Background(), params)
	require.NoError(t, err)
	require.Greater(t, first, 0)
	require.Equal(t, first, store.Len())

	second, err := p.Ingest(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first, store.Len(), "re-ingestion must overwrite, not accumulate")
}
