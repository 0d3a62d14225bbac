package assembler

import (
	"fmt"
	"strings"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag/chunker"
)

// Assemble concatenates retrieved chunks in ranked order into a single
// prompt context, bounded by the configured token budget. Duplicate chunk
// ids are skipped. When the budget runs out, lower-ranked chunks are
// dropped, never earlier ones. The returned manifest lists the chunk ids
// actually included and bounds the citation set the generator may use.
func Assemble(result ragModel.RetrievalResult) (string, ragModel.Manifest) {
	return AssembleWithBudget(result, config.ContextMaxTokens)
}

func AssembleWithBudget(result ragModel.RetrievalResult, maxTokens int) (string, ragModel.Manifest) {
	var sb strings.Builder
	manifest := ragModel.Manifest{}
	seen := make(map[string]bool, len(result.Chunks))
	used := 0

	for _, chunk := range result.Chunks {
		if seen[chunk.ChunkId] {
			continue
		}
		block := formatBlock(chunk)
		cost := chunker.EstimateTokens(block)
		if used+cost > maxTokens {
			break
		}
		seen[chunk.ChunkId] = true
		used += cost
		sb.WriteString(block)
		manifest = append(manifest, chunk.ChunkId)
	}

	return sb.String(), manifest
}

// formatBlock labels each excerpt with its chunk id so the model can cite it.
func formatBlock(chunk ragModel.ScoredChunk) string {
	return fmt.Sprintf("[chunk:%s]\n%s\n\n", chunk.ChunkId, chunk.Excerpt)
}
