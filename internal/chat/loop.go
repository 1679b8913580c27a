// Package chat drives the interactive question-answer session: ingestion
// once up front, then a read-retrieve-complete loop until the user exits or
// the context is cancelled.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/core"
	"ragchat/internal/ingest"
	"ragchat/internal/llm"
	"ragchat/internal/logger"
)

// Ingestor runs the one-time ingestion pass before the loop starts.
type Ingestor interface {
	Ingest(ctx context.Context, params ingest.Params) (int, error)
}

// Options holds the already-validated session parameters.
type Options struct {
	TopK         int
	SystemPrompt string
	Ingestion    ingest.Params
}

var (
	startupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

// Loop is the interactive conversation session.
type Loop struct {
	ingestor Ingestor
	store    core.VectorStore
	chat     core.ChatService
	opts     Options
	in       io.Reader
	out      io.Writer
}

// NewLoop creates a conversation loop reading questions from in and writing
// everything user-facing to out.
func NewLoop(ingestor Ingestor, store core.VectorStore, chat core.ChatService, opts Options, in io.Reader, out io.Writer) *Loop {
	return &Loop{
		ingestor: ingestor,
		store:    store,
		chat:     chat,
		opts:     opts,
		in:       in,
		out:      out,
	}
}

// Run ingests once, then answers questions until an empty input line, EOF,
// or cancellation. Ingestion failure is fatal to the session and returned;
// per-turn store or provider failures are reported and the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, startupStyle.Render("Starting ingestion..."))
	fmt.Fprintln(l.out)

	if _, err := l.ingestor.Ingest(ctx, l.opts.Ingestion); err != nil {
		if core.IsCancellation(err) {
			return nil
		}
		logger.Error("Data ingestion failed: %v", err)
		fmt.Fprintln(l.out, failureStyle.Render("Ingestion failed. See logs for details."))
		return err
	}

	fmt.Fprintln(l.out, startupStyle.Render("Ingestion complete. Ask a question (empty line to exit)."))

	scanner := bufio.NewScanner(l.in)
	for ctx.Err() == nil {
		fmt.Fprintln(l.out)
		fmt.Fprint(l.out, promptStyle.Render("user > "))

		if !scanner.Scan() {
			break
		}
		question := scanner.Text()
		if strings.TrimSpace(question) == "" {
			break
		}

		l.answer(ctx, question)
	}

	return nil
}

// answer runs one retrieval/completion turn. Failures are reported to the
// user and logged; they never terminate the session.
func (l *Loop) answer(ctx context.Context, question string) {
	results, err := l.store.Search(ctx, question, l.opts.TopK)
	if err != nil {
		if core.IsCancellation(err) {
			return
		}
		logger.Error("Context retrieval failed: %v", err)
		fmt.Fprintln(l.out, failureStyle.Render("Search failed. Check the vector store and try again."))
		return
	}

	// Never send ungrounded questions to the model.
	if len(results) == 0 {
		fmt.Fprintln(l.out, noticeStyle.Render("No relevant context retrieved. Try another question."))
		return
	}

	messages := llm.BuildMessages(l.opts.SystemPrompt, llm.BuildContext(results), question)

	response, err := l.chat.Complete(ctx, messages)
	if err != nil {
		if core.IsCancellation(err) {
			return
		}
		logger.Error("Failed to get response from chat model: %v", err)
		fmt.Fprintln(l.out, failureStyle.Render("Chat request failed. Check configuration and try again."))
		return
	}

	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, answerStyle.Render("assistant > "+strings.TrimSpace(response)))

	l.printCitations(results)
}

// printCitations lists the chunks that grounded the answer, in the same
// order they were handed to the model.
func (l *Loop) printCitations(results []core.SearchResult) {
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, "Context chunks:")

	for i, result := range results {
		scoreText := ""
		if result.Score != nil {
			scoreText = fmt.Sprintf(" score=%.3f", *result.Score)
		}
		fmt.Fprintf(l.out, "[%d] %s chunk %d%s\n", i+1, result.Chunk.Source, result.Chunk.ChunkIndex, scoreText)
	}
}
