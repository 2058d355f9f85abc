package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
)

// errCacheMiss is returned by a cacheBackend when the key is absent.
var errCacheMiss = errors.New("cache miss")

// cacheBackend is the slice of a key/value store CachedSource needs.
type cacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisBackend struct {
	rdb *goredis.Client
}

func (b redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, errCacheMiss
	}
	return raw, err
}

func (b redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b redisBackend) Del(ctx context.Context, keys ...string) error {
	return b.rdb.Del(ctx, keys...).Err()
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// CachedSource is a read-through cache over another Source. Values are stored
// JSON-encoded with a TTL; errors are never cached, and a failing cache only
// costs a trip to the wrapped source.
type CachedSource struct {
	next  Source
	cache cacheBackend
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedSource(next Source, rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *CachedSource {
	return newCachedSource(next, redisBackend{rdb: rdb}, ttl, log)
}

func newCachedSource(next Source, backend cacheBackend, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{next: next, cache: backend, ttl: ttl, log: log.With("component", "CatalogCache")}
}

const keyPrefix = "catalog:"

func categoriesKey() string          { return keyPrefix + "categories" }
func categoryKey(id string) string   { return keyPrefix + "category:" + id }
func papersKey(catID string) string  { return keyPrefix + "papers:" + catID }
func paperKey(id string) string      { return keyPrefix + "paper:" + id }
func questionsKey(pid string) string { return keyPrefix + "questions:" + pid }
func questionKey(id string) string   { return keyPrefix + "question:" + id }
func answersKey(qid string) string   { return keyPrefix + "answers:" + qid }

// readThrough serves key from the cache, or from load on a miss.
func readThrough[T any](ctx context.Context, c *CachedSource, key string, load func() (T, error)) (T, error) {
	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return v, nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, errCacheMiss) {
		c.log.Warn("catalog cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if encoded, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.ttl); err != nil {
			c.log.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

func (c *CachedSource) ListCategories(ctx context.Context) ([]models.Category, error) {
	return readThrough(ctx, c, categoriesKey(), func() ([]models.Category, error) {
		return c.next.ListCategories(ctx)
	})
}

func (c *CachedSource) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return readThrough(ctx, c, categoryKey(id), func() (*models.Category, error) {
		return c.next.GetCategory(ctx, id)
	})
}

func (c *CachedSource) ListPapers(ctx context.Context, categoryID string) ([]models.Paper, error) {
	return readThrough(ctx, c, papersKey(categoryID), func() ([]models.Paper, error) {
		return c.next.ListPapers(ctx, categoryID)
	})
}

func (c *CachedSource) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	return readThrough(ctx, c, paperKey(id), func() (*models.Paper, error) {
		return c.next.GetPaper(ctx, id)
	})
}

func (c *CachedSource) ListQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	return readThrough(ctx, c, questionsKey(paperID), func() ([]models.Question, error) {
		return c.next.ListQuestions(ctx, paperID)
	})
}

func (c *CachedSource) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return readThrough(ctx, c, questionKey(id), func() (*models.Question, error) {
		return c.next.GetQuestion(ctx, id)
	})
}

func (c *CachedSource) ListAnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error) {
	return readThrough(ctx, c, answersKey(questionID), func() ([]models.Answer, error) {
		return c.next.ListAnswerSteps(ctx, questionID)
	})
}

// ReplaceAnswerSteps writes through to the wrapped source and evicts the
// question's cached steps.
func (c *CachedSource) ReplaceAnswerSteps(ctx context.Context, questionID string, steps []models.Answer) error {
	w, ok := c.next.(StepWriter)
	if !ok {
		return fmt.Errorf("catalog source does not accept answer steps")
	}
	if err := w.ReplaceAnswerSteps(ctx, questionID, steps); err != nil {
		return err
	}
	if err := c.cache.Del(ctx, answersKey(questionID)); err != nil {
		c.log.Warn("catalog cache evict failed", "key", answersKey(questionID), "error", err)
	}
	return nil
}

// RemoveQuestion writes through and evicts the question, its steps and its
// paper's question list.
func (c *CachedSource) RemoveQuestion(ctx context.Context, id string) error {
	r, ok := c.next.(QuestionRemover)
	if !ok {
		return fmt.Errorf("catalog source does not accept removals")
	}
	q, err := c.next.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if err := r.RemoveQuestion(ctx, id); err != nil {
		return err
	}
	keys := []string{questionKey(id), answersKey(id), questionsKey(q.PaperID)}
	if err := c.cache.Del(ctx, keys...); err != nil {
		c.log.Warn("catalog cache evict failed", "keys", keys, "error", err)
	}
	return nil
}
