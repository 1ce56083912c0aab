package cache

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache keys for the aggregate reads that are expensive to recompute.
const (
	KeyAdminDashboard = "admin:dashboard"
	KeyDepartments    = "departments:all"
)

// Store is a best-effort key-value cache. Implementations must never turn a
// backend failure into a request failure; a failed Get is a miss, a failed
// Set or Delete is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisStore wraps a redis client as a Store. TTL comes from
// CACHE_TTL_SECONDS, defaulting to 300s.
func NewRedisStore(client *redis.Client, logger *logrus.Logger) Store {
	ttl := 300 * time.Second
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}
	return &redisStore{client: client, ttl: ttl, logger: logger}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithError(err).WithField("Key", key).Warn("Cache get failed, treating as miss")
		}
		return nil, false
	}
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("Key", key).Warn("Cache set failed")
	}
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.WithError(err).WithField("Keys", keys).Warn("Cache invalidation failed")
	}
}
