package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag/vectorDB"
)

// Store is a brute-force cosine index guarded by a RWMutex. It backs local
// runs without a qdrant endpoint and every index-touching test. Vectors are
// L2-normalized on the way in so scoring is a plain dot product.
type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]ragModel.IndexEntry //keyed by chunk id, which is what makes upsert idempotent
}

func NewStore(dimension int) *Store {
	return &Store{
		dimension: dimension,
		entries:   make(map[string]ragModel.IndexEntry),
	}
}

func (s *Store) Dimension() int { return s.dimension }

func (s *Store) Upsert(ctx context.Context, entries []ragModel.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return &ragModel.IndexError{
				Reason: fmt.Sprintf("vector dimension %d does not match index dimension %d", len(e.Vector), s.dimension),
			}
		}
	}
	for _, e := range entries {
		e.Vector = normalize(e.Vector)
		s.entries[e.ChunkId] = e
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, k int, threshold float32, filter vectorDB.Filter) ([]ragModel.ScoredChunk, error) {
	if len(vector) != s.dimension {
		return nil, &ragModel.IndexError{
			Reason: fmt.Sprintf("query vector dimension %d does not match index dimension %d", len(vector), s.dimension),
		}
	}
	if k <= 0 {
		return nil, nil
	}

	query := normalize(vector)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []ragModel.ScoredChunk
	for _, e := range s.entries {
		if filter.DocumentId != "" && e.DocumentId != filter.DocumentId {
			continue
		}
		score := dot(e.Vector, query)
		if score < threshold {
			continue
		}
		hits = append(hits, ragModel.ScoredChunk{
			ChunkId:    e.ChunkId,
			DocumentId: e.DocumentId,
			ChunkIndex: e.ChunkIndex,
			Excerpt:    e.Excerpt,
			Score:      score,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *Store) DeleteByDocument(ctx context.Context, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.DocumentId == documentId {
			delete(s.entries, id)
		}
	}
	return nil
}

// Len reports the number of indexed chunks; used by the corpus scan.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Scan returns up to limit entries across the corpus in (document, chunk
// index) order. The global summarizer samples from this.
func (s *Store) Scan(ctx context.Context, limit int) ([]ragModel.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]ragModel.ScoredChunk, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, ragModel.ScoredChunk{
			ChunkId:    e.ChunkId,
			DocumentId: e.DocumentId,
			ChunkIndex: e.ChunkIndex,
			Excerpt:    e.Excerpt,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DocumentId != all[j].DocumentId {
			return all[i].DocumentId < all[j].DocumentId
		}
		return all[i].ChunkIndex < all[j].ChunkIndex
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
