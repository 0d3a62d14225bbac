package store

import (
	"context"
	"encoding/json"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/data/redisStore"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	redis := redisStore.GetRedisStore(ctx, config.RedisJobStoreDB)
	if redis == nil {
		return nil
	}
	return &RedisJobStore{
		store:  redis,
		logger: logger_i.NewLogger("redis_jobstore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("saved job to redis", "status", job.Status)
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		s.logger.Error("error reading job from redis", "jobId", jobId, "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		s.logger.Error("corrupt job payload in redis", "jobId", jobId, "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobId string) {
	if err := s.store.Del(ctx, jobId); err != nil {
		s.logger.Error("error deleting job from redis", "jobId", jobId, "error", err)
		return
	}
	s.logger.Debug("job deleted from redis", "jobId", jobId)
}

func TestJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("test_redis_jobstore"),
	}
}
