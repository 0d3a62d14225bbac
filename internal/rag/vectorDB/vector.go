package vectorDB

import (
	"context"

	"github.com/jortega/docrag/internal/domain/ragModel"
)

// Filter restricts a query to one document's chunks. The zero value matches
// the whole corpus.
type Filter struct {
	DocumentId string
}

// Index is the capability set the retrieval pipeline needs from a vector
// database. Implementations must make Upsert idempotent per chunk id, enforce
// the configured dimension, and treat an empty match set as a valid empty
// result.
type Index interface {
	Upsert(ctx context.Context, entries []ragModel.IndexEntry) error
	Query(ctx context.Context, vector []float32, k int, threshold float32, filter Filter) ([]ragModel.ScoredChunk, error)
	DeleteByDocument(ctx context.Context, documentId string) error
	// Scan walks up to limit entries of the whole corpus in (document,
	// chunk index) order. Scores are zero; the global summarizer samples
	// from this.
	Scan(ctx context.Context, limit int) ([]ragModel.ScoredChunk, error)
	Dimension() int
}
