package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jortega/docrag/internal/domain/ragModel"
)

// InMemoryDocStore is the fallback document store when redis is offline.
type InMemoryDocStore struct {
	mu   *sync.RWMutex
	docs map[string]ragModel.Document
}

func InitInMemoryDocStore() *InMemoryDocStore {
	return &InMemoryDocStore{
		mu:   new(sync.RWMutex),
		docs: make(map[string]ragModel.Document),
	}
}

func (store *InMemoryDocStore) SaveDocument(ctx context.Context, doc ragModel.Document) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.docs[doc.Id] = doc
	return nil
}

func (store *InMemoryDocStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	doc, found := store.docs[id]
	return doc, found
}

func (store *InMemoryDocStore) DeleteDocument(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.docs, id)
	return nil
}

func (store *InMemoryDocStore) ListDocuments(ctx context.Context) ([]ragModel.Document, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	docs := make([]ragModel.Document, 0, len(store.docs))
	for _, d := range store.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Id < docs[j].Id })
	return docs, nil
}
