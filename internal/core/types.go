package core

// DocumentChunk represents a single ingested chunk along with the metadata
// needed for retrieval and citation. The ID is a pure function of
// (Source, ChunkIndex) so re-ingesting an unchanged file overwrites the
// same records instead of accumulating duplicates.
type DocumentChunk struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// SearchResult pairs a retrieved chunk with its similarity score.
// Score is nil when the backing store does not report one.
type SearchResult struct {
	Chunk DocumentChunk `json:"chunk"`
	Score *float32      `json:"score,omitempty"`
}

// Chat message roles understood by the completion provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single outbound chat message.
// Kept here rather than in internal/llm to avoid import cycles between
// the conversation loop and the provider client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
