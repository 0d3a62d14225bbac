package chunker

import (
	"strings"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
)

// Split cuts document text into bounded chunks with rune-exact offsets.
// Budgets are estimated tokens (config.CharsPerToken chars per token).
//
// Boundaries prefer paragraph breaks, then sentence ends, then line breaks,
// then word breaks, and hard-cut only when a single unit exceeds the budget.
// The function is a pure function of its inputs: identical text and
// parameters always produce identical chunk boundaries, which is what makes
// re-ingestion idempotent.
func Split(documentId, text string, maxTokens, overlapTokens int) ([]ragModel.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ragModel.IngestionError{Reason: "empty document"}
	}
	if len(text) > config.MaxDocumentBytes {
		return nil, &ragModel.IngestionError{Reason: "document exceeds maximum size"}
	}
	if maxTokens <= 0 {
		return nil, &ragModel.IngestionError{Reason: "max tokens must be > 0"}
	}
	if overlapTokens < 0 || overlapTokens >= maxTokens {
		return nil, &ragModel.IngestionError{Reason: "overlap must be >= 0 and < max tokens"}
	}

	runes := []rune(text)
	maxChars := maxTokens * config.CharsPerToken
	overlapChars := overlapTokens * config.CharsPerToken

	var chunks []ragModel.Chunk
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakPoint(runes, start, end)
		}

		chunks = append(chunks, ragModel.Chunk{
			DocumentId: documentId,
			Index:      len(chunks),
			Start:      start,
			End:        end,
			Text:       string(runes[start:end]),
			TokenCount: estimateTokens(end - start),
		})

		if end == len(runes) {
			break
		}

		next := end - overlapChars
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// estimateTokens is the deterministic provider-free heuristic used for all
// budgets: ~4 chars per token, rounded up.
func estimateTokens(chars int) int {
	return (chars + config.CharsPerToken - 1) / config.CharsPerToken
}

// EstimateTokens reports the token estimate for a text span.
func EstimateTokens(text string) int {
	return estimateTokens(len([]rune(text)))
}

// breakPoint searches backward from the budget limit for the best cut.
// It never shrinks a chunk below half the budget; within that window the
// separator priority mirrors the semantic ordering of the splitter.
func breakPoint(runes []rune, start, limit int) int {
	lo := start + (limit-start)/2

	// paragraph break
	if p := lastIndexSeq(runes, lo, limit, "\n\n"); p >= 0 {
		return p + 2
	}
	// sentence end followed by whitespace
	for i := limit - 1; i > lo; i-- {
		if isSentenceEnd(runes[i-1]) && isSpace(runes[i]) {
			return i + 1
		}
	}
	// line break
	for i := limit - 1; i > lo; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// word break
	for i := limit - 1; i > lo; i-- {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	// hard cut: a single unit exceeds the budget
	return limit
}

func lastIndexSeq(runes []rune, lo, hi int, sep string) int {
	sepRunes := []rune(sep)
	for i := hi - len(sepRunes); i >= lo; i-- {
		match := true
		for j, r := range sepRunes {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
