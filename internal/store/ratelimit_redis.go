package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRedisStore implements ratelimit.Store on a Redis sorted set
// per key, scored by hit time, so counts survive process restarts and
// are shared across replicas.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *RateLimitRedisStore) Record(
	ctx context.Context, key string, window time.Duration,
) (int64, error) {
	now := time.Now()
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()

	pipe.ZRemRangeByScore(ctx, redisKey,
		"0",
		strconv.FormatInt(now.Add(-window).UnixNano(), 10),
	)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})

	count := pipe.ZCard(ctx, redisKey)

	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return count.Val(), nil
}
