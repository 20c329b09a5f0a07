package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/microloans/internal/domain"
	customError "github.com/segyhp/microloans/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const (
	// StatsKey is the Redis key holding the latest stats snapshot.
	StatsKey = "loans:stats"
	// GenerationKey counts writes to the loans table. A snapshot is only
	// stored if the counter did not move while it was being computed.
	GenerationKey = "loans:stats:generation"
)

// StatsCache stores the aggregate snapshot between requests.
type StatsCache interface {
	// Get returns the cached snapshot, or (nil, nil) on a miss
	Get(ctx context.Context) (*domain.Stats, error)
	// Generation returns the current write generation; read it before
	// computing a snapshot and hand it back to Set.
	Generation(ctx context.Context) (int64, error)
	// Set stores stats unless the generation moved since it was read, in
	// which case ErrStaleSnapshot is returned and nothing is written.
	Set(ctx context.Context, generation int64, stats *domain.Stats) error
	// Invalidate bumps the generation and drops the snapshot.
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// OpenRedis parses url, connects and pings within timeout.
func OpenRedis(url string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	return &redisStatsCache{client: client, ttl: ttl}
}

func (c *redisStatsCache) Get(ctx context.Context) (*domain.Stats, error) {
	raw, err := c.client.Get(ctx, StatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}

	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, customError.WrapCacheError(err)
	}
	return &stats, nil
}

func (c *redisStatsCache) Generation(ctx context.Context) (int64, error) {
	generation, err := generationOf(ctx, c.client)
	if err != nil {
		return 0, customError.WrapCacheError(err)
	}
	return generation, nil
}

func (c *redisStatsCache) Set(ctx context.Context, generation int64, stats *domain.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return customError.WrapCacheError(err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generationOf(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return customError.ErrStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, StatsKey, raw, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, customError.ErrStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		return customError.ErrStaleSnapshot
	default:
		return customError.WrapCacheError(err)
	}
}

func (c *redisStatsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, StatsKey)
		return nil
	})
	if err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generationOf(ctx context.Context, c stringGetter) (int64, error) {
	generation, err := c.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *redisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NopStatsCache is used when no Redis is configured: every Get misses.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context) (*domain.Stats, error)      { return nil, nil }
func (NopStatsCache) Generation(context.Context) (int64, error)       { return 0, nil }
func (NopStatsCache) Set(context.Context, int64, *domain.Stats) error { return nil }
func (NopStatsCache) Invalidate(context.Context) error                { return nil }
func (NopStatsCache) Ping(context.Context) error                      { return nil }
