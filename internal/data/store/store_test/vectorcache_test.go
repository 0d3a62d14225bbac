package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jortega/docrag/internal/data/redisStore"
	"github.com/jortega/docrag/internal/data/store"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/redis/go-redis/v9"
)

func newTestVectorCache(t *testing.T) *store.RedisVectorCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestVectorCache(redisStore.NewTestStore(client))
}

func TestRedisVectorCache_Roundtrip(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()

	key := embedding.CacheKey("text-embedding-3-small", "some chunk text")
	want := []float32{0.25, -0.5, 1}

	if err := cache.Put(ctx, map[string][]float32{key: want}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found := cache.Get(ctx, key)
	if !found {
		t.Fatal("vector not found after Put")
	}
	if len(got) != len(want) {
		t.Fatalf("vector length changed: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestRedisVectorCache_MissAndClear(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()

	if _, found := cache.Get(ctx, "nope"); found {
		t.Error("unexpected hit on empty cache")
	}

	key := embedding.CacheKey("m", "text")
	if err := cache.Put(ctx, map[string][]float32{key: {1, 2}}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := cache.Get(ctx, key); found {
		t.Error("vector survived Clear")
	}
}
