package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag/llm"
	"github.com/jortega/docrag/internal/rag/vectorDB"
	"github.com/jortega/docrag/pkg/logger_i"
)

var logger = logger_i.NewLogger("summarizer")

const summarySystemPrompt = `You summarize a collection of document excerpts.
Write a concise overview of the main topics across all excerpts.
Mention document boundaries when topics clearly change between documents.
Do not invent content that is not supported by the excerpts.`

type Summarizer struct {
	index    vectorDB.Index
	provider llm.Provider
}

func NewSummarizer(index vectorDB.Index, provider llm.Provider) *Summarizer {
	return &Summarizer{index: index, provider: provider}
}

// Summarize produces a corpus-wide summary from an even sample of indexed
// chunks. It scans the index in document order, downsamples to at most
// MaxSummaryChunks entries and issues a single model call.
func (s *Summarizer) Summarize(ctx context.Context) (string, error) {
	chunks, err := s.index.Scan(ctx, 0)
	if err != nil {
		return "", &ragModel.RetrievalError{Err: err}
	}
	if len(chunks) == 0 {
		return config.RefusalAnswer, nil
	}

	sample := sampleEvenly(chunks, config.MaxSummaryChunks)

	var sb strings.Builder
	for _, chunk := range sample {
		block := fmt.Sprintf("[doc:%s chunk:%d]\n%s\n\n", chunk.DocumentId, chunk.ChunkIndex, chunk.Excerpt)
		if sb.Len()+len(block) > config.SummaryCharBudget {
			break
		}
		sb.WriteString(block)
	}

	logger.WithTrace(ctx).Debug("summarizing corpus sample", "indexed", len(chunks), "sampled", len(sample))

	callCtx, cancel := context.WithTimeout(ctx, config.GenerateTimeout)
	defer cancel()
	summary, err := s.provider.Generate(callCtx, summarySystemPrompt, sb.String())
	if err != nil {
		return "", &ragModel.GenerationError{Err: err}
	}
	return summary, nil
}

// sampleEvenly keeps at most max chunks, spaced uniformly across the scan
// so every document contributes roughly in proportion to its size.
func sampleEvenly(chunks []ragModel.ScoredChunk, max int) []ragModel.ScoredChunk {
	if max <= 0 || len(chunks) <= max {
		return chunks
	}
	sample := make([]ragModel.ScoredChunk, 0, max)
	step := float64(len(chunks)) / float64(max)
	for i := 0; i < max; i++ {
		sample = append(sample, chunks[int(float64(i)*step)])
	}
	return sample
}
