package store

import (
	"context"
	"encoding/json"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/data/redisStore"
	"github.com/jortega/docrag/pkg/logger_i"
)

const vectorKeyPrefix = "vec:"

// RedisVectorCache backs the embedding cache with redis so identical chunk
// text never hits the embedding provider twice, even across restarts.
// Implements embedding.VectorCache.
type RedisVectorCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisVectorCache(ctx context.Context) *RedisVectorCache {
	redis := redisStore.GetRedisStore(ctx, config.RedisVectorCacheDB)
	if redis == nil {
		return nil
	}
	return &RedisVectorCache{
		store:  redis,
		logger: logger_i.NewLogger("redis_vectorcache"),
	}
}

func (c *RedisVectorCache) Get(ctx context.Context, key string) ([]float32, bool) {
	val, err := c.store.Get(ctx, vectorKeyPrefix+key)
	if c.store.IsNil(err) {
		return nil, false
	} else if err != nil {
		// a cache read failure only costs a recomputation
		c.logger.Error("vector cache read failed", "error", err)
		return nil, false
	}

	var vector []float32
	if err = json.Unmarshal([]byte(val), &vector); err != nil {
		c.logger.Error("corrupt vector payload in redis", "key", key, "error", err)
		return nil, false
	}
	return vector, true
}

func (c *RedisVectorCache) Put(ctx context.Context, vectors map[string][]float32) error {
	for key, vector := range vectors {
		data, err := json.Marshal(vector)
		if err != nil {
			return err
		}
		if err := c.store.Set(ctx, vectorKeyPrefix+key, data, config.RedisVectorCacheTTL); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisVectorCache) Clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, vectorKeyPrefix+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...)
}

func TestVectorCache(store *redisStore.Store) *RedisVectorCache {
	return &RedisVectorCache{
		store:  store,
		logger: logger_i.NewLogger("test_redis_vectorcache"),
	}
}
