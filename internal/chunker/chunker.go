// Package chunker splits raw document text into overlapping windows and
// derives the stable identifiers that make re-ingestion idempotent.
package chunker

import (
	"fmt"
	"path/filepath"
	"strings"

	"ragchat/internal/core"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Split breaks content into overlapping, trimmed, non-empty windows of at
// most chunkSize characters. Sizes count runes, not bytes, so multi-byte
// text is never cut mid-character. Adjacent windows share overlap
// characters; an overlap outside [0, chunkSize-1] is clamped into that
// range rather than rejected, so the window step is always at least one
// character. Empty or whitespace-only content yields no chunks and no error.
func Split(content string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be greater than zero, got %d", core.ErrInvalidArgument, chunkSize)
	}

	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	if overlap < 0 {
		overlap = 0
	}
	if overlap > chunkSize-1 {
		overlap = chunkSize - 1
	}

	normalized := []rune(lineEndings.Replace(content))
	step := chunkSize - overlap

	chunks := make([]string, 0, (len(normalized)+step-1)/step)
	for start := 0; start < len(normalized); start += step {
		end := start + chunkSize
		if end > len(normalized) {
			end = len(normalized)
		}

		chunk := strings.TrimSpace(string(normalized[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(normalized) {
			break
		}
	}

	return chunks, nil
}

// ChunkID derives a deterministic identifier for a chunk from its source
// file name and position. The same (sourceName, index) pair always produces
// the same ID, which is what turns re-ingestion into an overwrite.
func ChunkID(sourceName string, index int) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	base = strings.ToLower(strings.ReplaceAll(base, " ", "_"))
	return fmt.Sprintf("%s-%04d", base, index)
}
