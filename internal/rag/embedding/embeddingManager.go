package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/pkg/logger_i"
)

// Provider is one external embedding API.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// Embedder is what the rest of the pipeline sees: cached, batched,
// concurrency-bounded, retried embedding.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type manager struct {
	provider    Provider
	cache       VectorCache
	batchSize   int
	concurrency int
	maxAttempts int
	backoffBase time.Duration
	callTimeout time.Duration
	logger      *logger_i.Logger
}

// NewManager wraps a provider with the content-addressed cache and the
// bounded batch scheduler.
func NewManager(provider Provider, cache VectorCache) Embedder {
	return &manager{
		provider:    provider,
		cache:       cache,
		batchSize:   config.EmbedBatchSize,
		concurrency: config.EmbedConcurrency,
		maxAttempts: config.EmbedMaxAttempts,
		backoffBase: config.EmbedBackoffBase,
		callTimeout: config.EmbedCallTimeout,
		logger:      logger_i.NewLogger("Embedding Manager"),
	}
}

func (m *manager) Dimension() int { return m.provider.Dimension() }

func (m *manager) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input, order-preserving. Cache lookups by
// content hash come first; only misses reach the provider, deduplicated so a
// text repeated within one call is embedded once. Miss batches run
// concurrently under the configured limit, and every batch must succeed or
// the whole call fails with an EmbeddingError. The result barrier is what
// keeps document ingestion atomic.
func (m *manager) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	log := m.logger.WithTrace(ctx)

	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	// positions of every distinct missing text, keyed by cache key
	missPositions := make(map[string][]int)
	var missKeys []string
	var missTexts []string

	for i, text := range texts {
		key := CacheKey(m.provider.Model(), text)
		if vec, ok := m.cache.Get(ctx, key); ok {
			results[i] = vec
			metrics.IncrementEmbedCacheHit()
			continue
		}
		metrics.IncrementEmbedCacheMiss()
		if _, seen := missPositions[key]; !seen {
			missKeys = append(missKeys, key)
			missTexts = append(missTexts, text)
		}
		missPositions[key] = append(missPositions[key], i)
	}

	if len(missTexts) == 0 {
		log.Debug("embedding batch served entirely from cache", "texts", len(texts))
		return results, nil
	}

	log.Debug("embedding misses", "distinct", len(missTexts), "total", len(texts))

	vectors, err := m.embedMisses(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for bi, key := range missKeys {
		for _, pos := range missPositions[key] {
			results[pos] = vectors[bi]
		}
	}
	return results, nil
}

// embedMisses splits texts into provider-sized batches and runs them under a
// semaphore. The WaitGroup is the all-or-nothing barrier: either every batch
// returns vectors or the first error wins and the rest are cancelled.
func (m *manager) embedMisses(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, m.concurrency)

	for start := 0; start < len(texts); start += m.batchSize {
		end := start + m.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batch := texts[start:end]
			batchVectors, err := m.callWithRetry(batchCtx, batch)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}

			copy(vectors[start:end], batchVectors)
			m.commitToCache(ctx, batch, batchVectors)
		}(start, end)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// commitToCache writes a fully successful batch. Failed batches never reach
// here, so the cache holds no partial state.
func (m *manager) commitToCache(ctx context.Context, texts []string, vectors [][]float32) {
	entries := make(map[string][]float32, len(texts))
	for i, text := range texts {
		entries[CacheKey(m.provider.Model(), text)] = vectors[i]
	}
	if err := m.cache.Put(ctx, entries); err != nil {
		m.logger.Error("cache write failed", "error", err)
	}
}

func (m *manager) callWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
		vectors, err := m.provider.Embed(callCtx, batch)
		cancel()

		if err == nil {
			if len(vectors) != len(batch) {
				return nil, &ragModel.EmbeddingError{
					Attempts: attempt,
					Err:      fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(batch)),
				}
			}
			return vectors, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// caller cancelled or another batch already failed
			break
		}
		if attempt < m.maxAttempts {
			backoff := m.backoffBase << (attempt - 1)
			m.logger.Warn("embedding call failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
		}
	}
	return nil, &ragModel.EmbeddingError{Attempts: m.maxAttempts, Err: lastErr}
}
