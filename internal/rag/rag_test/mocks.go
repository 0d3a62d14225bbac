package rag_test

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag/vectorDB"
)

// MockIndex implements vectorDB.Index
type MockIndex struct {
	OnUpsert           func(ctx context.Context, entries []ragModel.IndexEntry) error
	OnQuery            func(ctx context.Context, vector []float32, k int, threshold float32, filter vectorDB.Filter) ([]ragModel.ScoredChunk, error)
	OnDeleteByDocument func(ctx context.Context, documentId string) error
	OnScan             func(ctx context.Context, limit int) ([]ragModel.ScoredChunk, error)
}

func (m *MockIndex) Upsert(ctx context.Context, entries []ragModel.IndexEntry) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, entries)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, vector []float32, k int, threshold float32, filter vectorDB.Filter) ([]ragModel.ScoredChunk, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, k, threshold, filter)
	}
	return nil, nil
}

func (m *MockIndex) DeleteByDocument(ctx context.Context, documentId string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, documentId)
	}
	return nil
}

func (m *MockIndex) Scan(ctx context.Context, limit int) ([]ragModel.ScoredChunk, error) {
	if m.OnScan != nil {
		return m.OnScan(ctx, limit)
	}
	return nil, nil
}

func (m *MockIndex) Dimension() int { return 3 }

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = topicVector(texts[i])
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return topicVector(text), nil
}

func (m *MockEmbedder) Dimension() int { return 3 }

// MockLLM implements llm.Provider. The default behavior cites every chunk
// label it finds in the prompt, which is what a cooperative model would do.
type MockLLM struct {
	Calls      int
	OnGenerate func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

var labelPattern = regexp.MustCompile(`\[chunk:[^\]\s]+\]`)

func (m *MockLLM) Model() string { return "mock" }

func (m *MockLLM) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemPrompt, userPrompt)
	}
	labels := labelPattern.FindAllString(userPrompt, -1)
	return "The document discusses it " + strings.Join(labels, " "), nil
}

// MockDocStore implements ragModel.DocumentStore
type MockDocStore struct {
	mu   sync.Mutex
	docs map[string]ragModel.Document
}

func NewMockDocStore() *MockDocStore {
	return &MockDocStore{docs: make(map[string]ragModel.Document)}
}

func (m *MockDocStore) SaveDocument(ctx context.Context, doc ragModel.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.Id] = doc
	return nil
}

func (m *MockDocStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	return doc, ok
}

func (m *MockDocStore) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MockDocStore) ListDocuments(ctx context.Context) ([]ragModel.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]ragModel.Document, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, d)
	}
	return docs, nil
}

// topicVector embeds text on three axes: cats, dogs, everything else.
// Deterministic, so ranking assertions are exact.
func topicVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := []float32{0, 0, 0}
	if strings.Contains(lower, "cat") {
		v[0] = 1
	}
	if strings.Contains(lower, "dog") {
		v[1] = 1
	}
	if v[0] == 0 && v[1] == 0 {
		v[2] = 1
	}
	return v
}
