package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/data/redisStore"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/pkg/logger_i"
)

const docKeyPrefix = "doc:"

// RedisDocStore persists ingested documents so re-ingestion and ingestion
// retries survive a process restart.
type RedisDocStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocStore(ctx context.Context) *RedisDocStore {
	redis := redisStore.GetRedisStore(ctx, config.RedisDocStoreDB)
	if redis == nil {
		return nil
	}
	return &RedisDocStore{
		store:  redis,
		logger: logger_i.NewLogger("redis_docstore"),
	}
}

func (s *RedisDocStore) SaveDocument(ctx context.Context, doc ragModel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, docKeyPrefix+doc.Id, data, config.RedisDocStoreTTL)
}

func (s *RedisDocStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	var doc ragModel.Document
	val, err := s.store.Get(ctx, docKeyPrefix+id)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.Error("error reading document from redis", "documentId", id, "error", err)
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("corrupt document payload in redis", "documentId", id, "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocStore) DeleteDocument(ctx context.Context, id string) error {
	return s.store.Del(ctx, docKeyPrefix+id)
}

func (s *RedisDocStore) ListDocuments(ctx context.Context) ([]ragModel.Document, error) {
	keys, err := s.store.Keys(ctx, docKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	values, err := s.store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	docs := make([]ragModel.Document, 0, len(values))
	for _, val := range values {
		var doc ragModel.Document
		if err := json.Unmarshal([]byte(val), &doc); err != nil {
			s.logger.Error("skipping corrupt document payload", "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Id < docs[j].Id })
	return docs, nil
}

func TestDocStore(store *redisStore.Store) *RedisDocStore {
	return &RedisDocStore{
		store:  store,
		logger: logger_i.NewLogger("test_redis_docstore"),
	}
}
