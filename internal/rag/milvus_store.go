// Package rag provides the vector store implementations backing retrieval:
// a Milvus-based store for real deployments and an in-memory store for
// offline runs and tests.
package rag

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"ragchat/internal/core"
	"ragchat/internal/logger"
)

// Field names for the chunk collection schema.
const (
	FieldID         = "id"
	FieldContent    = "content"
	FieldSource     = "source"
	FieldChunkIndex = "chunk_index"
	FieldVector     = "vector"
)

// VarChar limits for the schema.
const (
	maxIDLength      = "255"
	maxSourceLength  = "255"
	maxContentLength = "65535"
)

// DefaultEmbeddingDim is the default dimension for embedding vectors.
const DefaultEmbeddingDim = 1536

// MilvusStore implements core.VectorStore on top of a Milvus collection.
// Embeddings are produced internally via the injected embed service, so
// callers only ever deal in chunk text and query strings.
type MilvusStore struct {
	client       *milvusclient.Client
	embedder     core.EmbedService
	collection   string
	embeddingDim int
}

// NewMilvusStore connects to Milvus and returns a store bound to the given
// collection name.
func NewMilvusStore(ctx context.Context, addr, collection string, embedder core.EmbedService, embeddingDim int) (*MilvusStore, error) {
	if embeddingDim <= 0 {
		embeddingDim = DefaultEmbeddingDim
	}

	logger.Info("Connecting to Milvus at %s (collection %q, dim %d)", addr, collection, embeddingDim)

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: addr})
	if err != nil {
		return nil, &core.StoreError{Op: "connect", Err: err}
	}

	return &MilvusStore{
		client:       c,
		embedder:     embedder,
		collection:   collection,
		embeddingDim: embeddingDim,
	}, nil
}

// Close releases the underlying Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// EnsureCollection creates the chunk collection, its vector index, and loads
// it into memory. Safe to call when the collection already exists.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return &core.StoreError{Op: "ensure collection", Err: fmt.Errorf("failed to check if collection exists: %w", err)}
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Document chunks for grounded question answering",
			Fields: []*entity.Field{
				{
					Name:       FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{
						"max_length": maxIDLength,
					},
				},
				{
					Name:     FieldContent,
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": maxContentLength,
					},
				},
				{
					Name:     FieldSource,
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": maxSourceLength,
					},
				},
				{
					Name:     FieldChunkIndex,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     FieldVector,
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.embeddingDim),
					},
				},
			},
		}

		createOpt := milvusclient.NewCreateCollectionOption(s.collection, schema)
		if err := s.client.CreateCollection(ctx, createOpt); err != nil {
			return &core.StoreError{Op: "ensure collection", Err: fmt.Errorf("failed to create collection: %w", err)}
		}

		vecIdx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		indexOpt := milvusclient.NewCreateIndexOption(s.collection, FieldVector, vecIdx)
		if _, err := s.client.CreateIndex(ctx, indexOpt); err != nil {
			return &core.StoreError{Op: "ensure collection", Err: fmt.Errorf("failed to create index on vector field: %w", err)}
		}

		logger.Info("Created collection: %s", s.collection)
	}

	// Milvus requires the collection to be loaded before searching. Loading
	// an already-loaded collection is fine.
	loadOpt := milvusclient.NewLoadCollectionOption(s.collection)
	if _, err := s.client.LoadCollection(ctx, loadOpt); err != nil {
		return &core.StoreError{Op: "ensure collection", Err: fmt.Errorf("failed to load collection: %w", err)}
	}

	return nil
}

// DropCollection removes the collection and all stored chunks. Dropping a
// collection that does not exist is a no-op.
func (s *MilvusStore) DropCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return &core.StoreError{Op: "drop collection", Err: fmt.Errorf("failed to check if collection exists: %w", err)}
	}
	if !exists {
		return nil
	}

	dropOpt := milvusclient.NewDropCollectionOption(s.collection)
	if err := s.client.DropCollection(ctx, dropOpt); err != nil {
		return &core.StoreError{Op: "drop collection", Err: err}
	}

	logger.Info("Dropped collection: %s", s.collection)
	return nil
}

// UpsertChunks embeds each chunk's content and writes the batch in a single
// upsert keyed by chunk ID, so matching keys overwrite earlier records.
func (s *MilvusStore) UpsertChunks(ctx context.Context, chunks []core.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	sources := make([]string, 0, len(chunks))
	indexes := make([]int64, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))

	for _, chunk := range chunks {
		vec, err := s.embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return err
		}
		if len(vec) != s.embeddingDim {
			return &core.StoreError{Op: "upsert", Err: fmt.Errorf("embedding dimension %d does not match collection dimension %d", len(vec), s.embeddingDim)}
		}

		ids = append(ids, chunk.ID)
		contents = append(contents, chunk.Content)
		sources = append(sources, chunk.Source)
		indexes = append(indexes, int64(chunk.ChunkIndex))
		vectors = append(vectors, vec)
	}

	upsertOpt := milvusclient.NewColumnBasedInsertOption(s.collection,
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnVarChar(FieldContent, contents),
		column.NewColumnVarChar(FieldSource, sources),
		column.NewColumnInt64(FieldChunkIndex, indexes),
		column.NewColumnFloatVector(FieldVector, s.embeddingDim, vectors),
	)
	if _, err := s.client.Upsert(ctx, upsertOpt); err != nil {
		return &core.StoreError{Op: "upsert", Err: err}
	}

	logger.Debug("Upserted %d chunks into %s", len(chunks), s.collection)
	return nil
}

// Search embeds the query and runs an ANN search, returning up to topK
// results ordered by descending similarity.
func (s *MilvusStore) Search(ctx context.Context, query string, topK int) ([]core.SearchResult, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	searchOpt := milvusclient.NewSearchOption(s.collection, topK, []entity.Vector{entity.FloatVector(vec)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldContent, FieldSource, FieldChunkIndex)

	resultSets, err := s.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, &core.StoreError{Op: "search", Err: err}
	}

	var results []core.SearchResult
	for _, rs := range resultSets {
		contentCol := rs.GetColumn(FieldContent)
		sourceCol := rs.GetColumn(FieldSource)
		indexCol := rs.GetColumn(FieldChunkIndex)

		for i := 0; i < rs.ResultCount; i++ {
			chunk := core.DocumentChunk{}

			if rs.IDs != nil {
				if id, err := rs.IDs.GetAsString(i); err == nil {
					chunk.ID = id
				}
			}
			if contentCol != nil {
				if text, err := contentCol.GetAsString(i); err == nil {
					chunk.Content = text
				}
			}
			if sourceCol != nil {
				if src, err := sourceCol.GetAsString(i); err == nil {
					chunk.Source = src
				}
			}
			if indexCol != nil {
				if idx, err := indexCol.GetAsInt64(i); err == nil {
					chunk.ChunkIndex = int(idx)
				}
			}

			result := core.SearchResult{Chunk: chunk}
			if i < len(rs.Scores) {
				score := rs.Scores[i]
				result.Score = &score
			}
			results = append(results, result)
		}
	}

	logger.Debug("Search for %q returned %d results", query, len(results))
	return results, nil
}
