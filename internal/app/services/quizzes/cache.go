package quizzes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// RedisCache is a read-through cache for quiz lookups. Cache failures are
// treated as misses; the store remains the source of truth.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache constructs a cache around an existing Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.NewDefault("quiz-cache")
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func cacheKey(id string) string { return "quiz:" + id }

// GetQuiz returns the cached quiz, if present.
func (c *RedisCache) GetQuiz(ctx context.Context, id string) (quiz.Quiz, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debugf("cache read for quiz %s", id)
		}
		return quiz.Quiz{}, false
	}

	var q quiz.Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		c.log.WithError(err).Warnf("corrupt cache entry for quiz %s", id)
		_ = c.client.Del(ctx, cacheKey(id)).Err()
		return quiz.Quiz{}, false
	}
	return q, true
}

// SetQuiz stores the quiz with the configured TTL.
func (c *RedisCache) SetQuiz(ctx context.Context, q quiz.Quiz) {
	raw, err := json.Marshal(q)
	if err != nil {
		c.log.WithError(err).Warnf("encode quiz %s for cache", q.ID)
		return
	}
	if err := c.client.Set(ctx, cacheKey(q.ID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debugf("cache write for quiz %s", q.ID)
	}
}
