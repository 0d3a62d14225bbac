package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// VectorCache is the content-addressed embedding cache. Keys are content
// hashes, so concurrent writers racing on the same key are writing the same
// vector and last-writer-wins is a no-op. Instances have an explicit
// lifecycle (constructed at startup, clearable on demand) so tests can
// inject isolated ones.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Put(ctx context.Context, vectors map[string][]float32) error
	Clear(ctx context.Context) error
}

// CacheKey hashes model name and text together: switching embedding models
// must never serve vectors computed by another model.
func CacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryCache is the in-process VectorCache used when redis is offline and
// in tests.
type MemoryCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vectors: make(map[string][]float32)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[key]
	return v, ok
}

func (c *MemoryCache) Put(ctx context.Context, vectors map[string][]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range vectors {
		c.vectors[k] = v
	}
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = make(map[string][]float32)
	return nil
}
