package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/internal/rag/llm"
	"github.com/jortega/docrag/pkg/logger_i"
)

var logger = logger_i.NewLogger("generator")

var citationPattern = regexp.MustCompile(`\[chunk:([^\]\s]+)\]`)

const systemPrompt = `You answer questions strictly from the provided context blocks.
Each block starts with a label of the form [chunk:ID].
Cite every claim with the label of the block it came from, exactly as written.
Never cite a label that is not present in the context.
If the context does not contain the answer, say so instead of guessing.`

type Generator struct {
	provider llm.Provider
}

func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Answer invokes the model with the question and assembled context. When the
// manifest is empty no model call is made and the designated refusal is
// returned with Grounded false. Citations outside the manifest are stripped
// and counted as anomalies rather than failing the request.
func (g *Generator) Answer(ctx context.Context, question string, contextText string, manifest ragModel.Manifest) (ragModel.Answer, error) {
	if len(manifest) == 0 {
		metrics.IncrementRefusal()
		logger.WithTrace(ctx).Info("no evidence cleared the threshold, refusing")
		return ragModel.Answer{
			Text:      config.RefusalAnswer,
			Citations: []string{},
			Grounded:  false,
		}, nil
	}

	userPrompt := fmt.Sprintf("Context:\n%s\nUser Question: %s", contextText, question)

	text, err := g.generateWithRetry(ctx, userPrompt)
	if err != nil {
		return ragModel.Answer{}, &ragModel.GenerationError{Err: err}
	}

	text, citations := validateCitations(ctx, text, manifest)

	return ragModel.Answer{
		Text:      text,
		Citations: citations,
		Grounded:  true,
	}, nil
}

func (g *Generator) generateWithRetry(ctx context.Context, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= config.GenerateAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, config.GenerateTimeout)
		text, err := g.provider.Generate(callCtx, systemPrompt, userPrompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.WithTrace(ctx).Warn("generation attempt failed", "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			break
		}
		if attempt < config.GenerateAttempts {
			select {
			case <-time.After(config.EmbedBackoffBase << (attempt - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

// validateCitations enforces manifest membership on every cited chunk id.
// The model is only instructed to comply, so the check is done in code:
// unknown citations are removed from the text and logged.
func validateCitations(ctx context.Context, text string, manifest ragModel.Manifest) (string, []string) {
	seen := make(map[string]bool)
	var citations []string

	cleaned := citationPattern.ReplaceAllStringFunc(text, func(match string) string {
		id := citationPattern.FindStringSubmatch(match)[1]
		if !manifest.Contains(id) {
			metrics.IncrementCitationAnomaly()
			logger.WithTrace(ctx).Warn("model cited a chunk outside the manifest", "chunkId", id)
			return ""
		}
		if !seen[id] {
			seen[id] = true
			citations = append(citations, id)
		}
		return match
	})

	if citations == nil {
		citations = []string{}
	}
	return strings.TrimSpace(cleaned), citations
}
