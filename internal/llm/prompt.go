package llm

import (
	"fmt"
	"strings"

	"ragchat/internal/core"
)

// contextInstruction is the fixed line that opens every grounding block.
// Citations are rendered by the console, so the model is told to leave
// markers out of its reply.
const contextInstruction = "Use the numbered snippets below to ground your answer, but keep the reply free of citation markers."

// BuildContext formats retrieved chunks into the textual section prepended
// to the user message: a 1-based index, the chunk's source and position, an
// optional similarity score, then the chunk text.
func BuildContext(results []core.SearchResult) string {
	var builder strings.Builder
	builder.WriteString(contextInstruction)
	builder.WriteString("\n\n")

	for i, result := range results {
		scoreText := ""
		if result.Score != nil {
			scoreText = fmt.Sprintf(" (score: %.3f)", *result.Score)
		}
		builder.WriteString(fmt.Sprintf("[%d] %s chunk %d%s\n", i+1, result.Chunk.Source, result.Chunk.ChunkIndex, scoreText))
		builder.WriteString(result.Chunk.Content)
		builder.WriteString("\n\n")
	}

	return builder.String()
}

// BuildMessages assembles the two-message set sent to the chat model: the
// configured system prompt, then the grounding context followed by the
// question verbatim.
func BuildMessages(systemPrompt, contextBlock, question string) []core.ChatMessage {
	return []core.ChatMessage{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf("%sQuestion:\n%s", contextBlock, question)},
	}
}
