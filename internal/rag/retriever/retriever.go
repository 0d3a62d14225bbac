package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/jortega/docrag/internal/rag/vectorDB"
	"github.com/jortega/docrag/pkg/logger_i"
)

var logger = logger_i.NewLogger("retriever")

type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.Index
}

func NewRetriever(embedder embedding.Embedder, index vectorDB.Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the question and returns the top-k chunks above the
// similarity threshold. Equal scores rank by ascending chunk index so
// repeated calls over the same index state return the same ordering.
func (r *Retriever) Retrieve(ctx context.Context, query ragModel.Query) (ragModel.RetrievalResult, error) {
	k := query.TopK
	if k <= 0 {
		k = config.DefaultTopK
	}
	threshold := query.Threshold
	if threshold <= 0 {
		threshold = config.DefaultScoreThreshold
	}

	vector, err := r.embedder.EmbedQuery(ctx, query.Question)
	if err != nil {
		return ragModel.RetrievalResult{}, err
	}

	filter := vectorDB.Filter{DocumentId: query.DocumentId}
	matches, err := r.index.Query(ctx, vector, k, threshold, filter)
	if err != nil {
		return ragModel.RetrievalResult{}, &ragModel.RetrievalError{Err: err}
	}

	if config.LexicalBoostWeight > 0 {
		rerank(query.Question, matches)
	}

	if len(matches) > 0 {
		metrics.ObserveTopRetrievalScore(float64(matches[0].Score))
	}
	logger.WithTrace(ctx).Debug("retrieval complete", "matches", len(matches), "k", k)

	return ragModel.RetrievalResult{Chunks: matches}, nil
}

// rerank adds a small lexical overlap boost so chunks literally containing
// the query terms edge out near-identical cosine scores. The boost is a
// pure function of the question and chunk text, keeping ordering reproducible.
func rerank(question string, matches []ragModel.ScoredChunk) {
	terms := queryTerms(question)
	if len(terms) == 0 {
		return
	}
	for i := range matches {
		overlap := termOverlap(terms, matches[i].Excerpt)
		matches[i].Score += config.LexicalBoostWeight * overlap
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkIndex < matches[j].ChunkIndex
	})
}

func queryTerms(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

func termOverlap(terms []string, text string) float32 {
	lower := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float32(hits) / float32(len(terms))
}
