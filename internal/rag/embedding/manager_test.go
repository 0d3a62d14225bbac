package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jortega/docrag/internal/domain/ragModel"
)

// mockProvider counts calls and records which texts reached the provider.
type mockProvider struct {
	mu      sync.Mutex
	calls   int
	seen    map[string]int
	onEmbed func(ctx context.Context, texts []string) ([][]float32, error)
}

func newMockProvider() *mockProvider {
	return &mockProvider{seen: make(map[string]int)}
}

func (p *mockProvider) Model() string  { return "mock-model" }
func (p *mockProvider) Dimension() int { return 3 }

func (p *mockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.calls++
	for _, t := range texts {
		p.seen[t]++
	}
	p.mu.Unlock()

	if p.onEmbed != nil {
		return p.onEmbed(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = []float32{float32(len(t)), 1, 0}
	}
	return vectors, nil
}

func (p *mockProvider) timesSeen(text string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[text]
}

func TestEmbedBatch_OrderPreserving(t *testing.T) {
	provider := newMockProvider()
	m := NewManager(provider, NewMemoryCache())

	texts := []string{"a", "bb", "ccc", "dddd"}
	vectors, err := m.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, text := range texts {
		if vectors[i][0] != float32(len(text)) {
			t.Errorf("vector %d does not correspond to input %q", i, text)
		}
	}
}

func TestEmbedBatch_CacheHitSkipsProvider(t *testing.T) {
	provider := newMockProvider()
	m := NewManager(provider, NewMemoryCache())
	ctx := context.Background()

	texts := []string{"chunk one", "chunk two", "chunk three"}
	if _, err := m.EmbedBatch(ctx, texts); err != nil {
		t.Fatalf("first ingestion failed: %v", err)
	}
	if _, err := m.EmbedBatch(ctx, texts); err != nil {
		t.Fatalf("second ingestion failed: %v", err)
	}

	for _, text := range texts {
		if n := provider.timesSeen(text); n != 1 {
			t.Errorf("text %q reached the provider %d times, want 1", text, n)
		}
	}
}

func TestEmbedBatch_DuplicateTextsCollapse(t *testing.T) {
	provider := newMockProvider()
	m := NewManager(provider, NewMemoryCache())

	vectors, err := m.EmbedBatch(context.Background(), []string{"same", "same", "same"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if provider.timesSeen("same") != 1 {
		t.Errorf("duplicate text embedded %d times", provider.timesSeen("same"))
	}
	for i := 1; i < 3; i++ {
		if vectors[i] == nil {
			t.Errorf("position %d missing its vector", i)
		}
	}
}

func TestEmbedBatch_RetryThenSucceed(t *testing.T) {
	provider := newMockProvider()
	attempts := 0
	provider.onEmbed = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 2, 3}
		}
		return vectors, nil
	}
	m := NewManager(provider, NewMemoryCache())

	if _, err := m.EmbedBatch(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestEmbedBatch_ExhaustedRetriesSurfaceEmbeddingError(t *testing.T) {
	provider := newMockProvider()
	underlying := errors.New("provider down")
	provider.onEmbed = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, underlying
	}
	m := NewManager(provider, NewMemoryCache())

	_, err := m.EmbedBatch(context.Background(), []string{"x"})
	var embErr *ragModel.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Error("EmbeddingError must carry the last underlying error")
	}
}

func TestEmbedBatch_FailedBatchNotCached(t *testing.T) {
	provider := newMockProvider()
	provider.onEmbed = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}
	cache := NewMemoryCache()
	m := NewManager(provider, cache)
	ctx := context.Background()

	if _, err := m.EmbedBatch(ctx, []string{"uncached text"}); err == nil {
		t.Fatal("expected failure")
	}
	if _, ok := cache.Get(ctx, CacheKey("mock-model", "uncached text")); ok {
		t.Error("failed batch must not be cached")
	}
}

func TestEmbedBatch_ManyBatchesAllOrNothing(t *testing.T) {
	provider := newMockProvider()
	provider.onEmbed = func(ctx context.Context, texts []string) ([][]float32, error) {
		// fail any batch containing the poison text, succeed otherwise
		for _, t := range texts {
			if t == "poison" {
				return nil, errors.New("bad batch")
			}
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}
	m := NewManager(provider, NewMemoryCache())

	// enough texts for several provider batches
	var texts []string
	for i := 0; i < 120; i++ {
		texts = append(texts, fmt.Sprintf("text-%d", i))
	}
	texts = append(texts, "poison")

	_, err := m.EmbedBatch(context.Background(), texts)
	var embErr *ragModel.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected the whole call to fail with EmbeddingError, got %v", err)
	}
}

func TestEmbedQuery(t *testing.T) {
	provider := newMockProvider()
	m := NewManager(provider, NewMemoryCache())

	vec, err := m.EmbedQuery(context.Background(), "what about dogs?")
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("unexpected vector length %d", len(vec))
	}
}
