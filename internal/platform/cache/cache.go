// Package cache stores computed reward summaries in Redis so repeated
// dashboard reads do not re-aggregate the ledger.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SummaryCache caches reward summaries per learner and reporting day.
// Cache failures never fail the caller: a broken cache behaves as a miss.
//
// Every learner has a generation that Invalidate advances. A reader takes
// the generation before it reads the store and hands it back to Set, which
// drops the write if the learner's data changed in between.
type SummaryCache interface {
	// Generation returns the learner's current generation. ok is false when
	// the cache cannot tell, in which case nothing should be stored.
	Generation(ctx context.Context, learnerID uuid.UUID) (gen int64, ok bool)
	// Get returns the cached summary for the learner's day, if any.
	Get(ctx context.Context, learnerID uuid.UUID, day string) (*reward.Summary, bool)
	// Set stores a summary for the learner's day unless the learner's
	// generation is no longer gen.
	Set(ctx context.Context, learnerID uuid.UUID, gen int64, day string, summary *reward.Summary)
	// Invalidate advances the learner's generation and drops every cached
	// summary.
	Invalidate(ctx context.Context, learnerID uuid.UUID) error
}

// errStaleGeneration aborts a Set whose generation was overtaken.
var errStaleGeneration = errors.New("summary generation changed")

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// RedisCache is the Redis-backed SummaryCache. All of a learner's days live
// in one hash so that invalidation is a single DEL.
type RedisCache struct {
	Client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ SummaryCache = (*RedisCache)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return NewWithClient(client, ttl, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{
		Client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "summary_cache")),
	}
}

// Key returns the hash key holding a learner's cached summaries.
func Key(learnerID uuid.UUID) string {
	return "rewards:summary:" + learnerID.String()
}

// GenerationKey returns the counter key of a learner's generation.
func GenerationKey(learnerID uuid.UUID) string {
	return "rewards:gen:" + learnerID.String()
}

// generationTTL outlives any read, so an expired counter can only make a
// reader skip its write.
const generationTTL = 24 * time.Hour

// Generation implements SummaryCache. A missing counter is generation 0.
func (c *RedisCache) Generation(ctx context.Context, learnerID uuid.UUID) (int64, bool) {
	gen, err := c.Client.Get(ctx, GenerationKey(learnerID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.FromContextOrDefault(ctx, c.logger).Warn("summary generation read failed",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return 0, false
	}
	return gen, true
}

// Get implements SummaryCache.
func (c *RedisCache) Get(ctx context.Context, learnerID uuid.UUID, day string) (*reward.Summary, bool) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := c.Client.HGet(ctx, Key(learnerID), day).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("summary cache read failed",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	var s reward.Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Warn("discarding undecodable cached summary",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		_ = c.Client.HDel(ctx, Key(learnerID), day).Err()
		return nil, false
	}
	return &s, true
}

// Set implements SummaryCache. The generation check and the write run as
// one WATCH transaction, so an Invalidate landing in between aborts it.
func (c *RedisCache) Set(ctx context.Context, learnerID uuid.UUID, gen int64, day string, summary *reward.Summary) {
	if summary == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := json.Marshal(summary)
	if err != nil {
		log.Warn("failed to encode summary", slog.String("error", err.Error()))
		return
	}

	key, genKey := Key(learnerID), GenerationKey(learnerID)
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, day, payload)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		log.Debug("skipped stale summary write",
			slog.String("learner_id", learnerID.String()),
			slog.Int64("generation", gen))
	default:
		log.Warn("summary cache write failed",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
	}
}

// Invalidate implements SummaryCache.
func (c *RedisCache) Invalidate(ctx context.Context, learnerID uuid.UUID) error {
	genKey := GenerationKey(learnerID)
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, Key(learnerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating summary cache: %w", err)
	}
	return nil
}

// Close shuts down the cache client.
func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Nop is a SummaryCache that never stores anything. It is used when no
// cache URL is configured.
type Nop struct{}

var _ SummaryCache = Nop{}

func (Nop) Generation(context.Context, uuid.UUID) (int64, bool)            { return 0, false }
func (Nop) Get(context.Context, uuid.UUID, string) (*reward.Summary, bool) { return nil, false }
func (Nop) Set(context.Context, uuid.UUID, int64, string, *reward.Summary) {}
func (Nop) Invalidate(context.Context, uuid.UUID) error                    { return nil }
