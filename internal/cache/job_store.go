package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
)

const (
	jobKeyPrefix = "export:job:"
	jobTTL       = 24 * time.Hour
)

// RedisJobStore keeps async export job state in Redis, the same place a
// task queue would park its results. Entries expire after a day.
type RedisJobStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisJobStore(client *redis.Client, logger *logrus.Logger) *RedisJobStore {
	return &RedisJobStore{client: client, logger: logger}
}

func (s *RedisJobStore) Put(ctx context.Context, job domain.ExportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKeyPrefix+job.TaskID, raw, jobTTL).Err()
}

// Get returns nil without error for an unknown task id.
func (s *RedisJobStore) Get(ctx context.Context, taskID string) (*domain.ExportJob, error) {
	raw, err := s.client.Get(ctx, jobKeyPrefix+taskID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var job domain.ExportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
