// Package cache keeps search result pages in Redis.
//
// Page keys carry a generation number. A listing mutation increments the
// generation before the request returns, so every page computed against
// older data becomes unreachable at once, including pages written late by
// searches that were already running. Deleting the dead keys happens in
// the background.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"github.com/gammazero/workerpool"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "property:search:"
	generationKey = keyPrefix + "gen"
	pagePrefix    = keyPrefix + "page:"
	scanPattern   = pagePrefix + "*"
	scanCount     = 100
)

type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	pool   *workerpool.WorkerPool
}

func NewSearchCache(client *redis.Client, ttl time.Duration, workers int) *SearchCache {
	if workers < 1 {
		workers = 1
	}
	return &SearchCache{
		client: client,
		ttl:    ttl,
		pool:   workerpool.New(workers),
	}
}

// Key is the Redis key of the page for f in generation gen.
func Key(gen int64, f search.Filters) string {
	sum := sha256.Sum256([]byte(f.Key()))
	return pagePrefix + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:])
}

// Generation returns the current generation. Callers must read it before
// querying the store. ok is false when Redis cannot be reached, in which
// case the cache must not be used for this search.
func (c *SearchCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	}
	logger.FromContext(ctx).Warn("search cache generation read failed", "error", err)
	return 0, false
}

// Get returns the cached page for f. Redis errors count as a miss.
func (c *SearchCache) Get(ctx context.Context, gen int64, f search.Filters) (models.ResultPage, bool) {
	key := Key(gen, f)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("search cache get failed", "key", key, "error", err)
		}
		return models.ResultPage{}, false
	}

	var page models.ResultPage
	if err := json.Unmarshal(data, &page); err != nil {
		logger.FromContext(ctx).Warn("search cache entry corrupt", "key", key, "error", err)
		return models.ResultPage{}, false
	}
	logger.FromContext(ctx).Debug("search cache hit", "key", key)
	return page, true
}

func (c *SearchCache) Set(ctx context.Context, gen int64, f search.Filters, page models.ResultPage) {
	data, err := json.Marshal(page)
	if err != nil {
		logger.FromContext(ctx).Warn("search cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, Key(gen, f), data, c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("search cache set failed", "error", err)
	}
}

// Invalidate retires every cached page by moving to a new generation, then
// queues deletion of the retired keys on the worker pool.
func (c *SearchCache) Invalidate(ctx context.Context) {
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		logger.FromContext(ctx).Error("search cache generation bump failed", "error", err)
		return
	}

	c.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := c.Purge(ctx, gen)
		if err != nil {
			logger.Error("search cache purge failed", "error", err)
			return
		}
		logger.Debug("search cache purged", "keys", n, "generation", gen)
	})
}

// Purge deletes the pages of every generation older than current and
// returns how many keys were removed.
func (c *SearchCache) Purge(ctx context.Context, current int64) (int, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			return 0, err
		}
		for _, key := range batch {
			if generationOf(key) < current {
				keys = append(keys, key)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func generationOf(key string) int64 {
	rest := strings.TrimPrefix(key, pagePrefix)
	raw, _, _ := strings.Cut(rest, ":")
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return gen
}

// Close waits for queued purges to finish.
func (c *SearchCache) Close() {
	c.pool.StopWait()
}
