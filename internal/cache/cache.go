package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/metrics"
)

// Store is a thin wrapper over redis used by handlers to populate keys after
// computing an expensive result.
type Store struct {
	cli *redis.Client
	log *zap.SugaredLogger
}

func NewStore(cli *redis.Client, log *zap.SugaredLogger) *Store {
	return &Store{cli: cli, log: log}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.cli.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Warnw("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return b, true
}

// Set marshals v under key, best effort. A cache write failure is never worth
// failing the request over.
func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warnw("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := s.cli.Set(ctx, key, b, ttl).Err(); err != nil {
		s.log.Warnw("cache set failed", "key", key, "error", err)
	}
}

func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if err := s.cli.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnw("cache invalidate failed", "keys", keys, "error", err)
	}
}

// Getter is the read side of the store, split out so the middleware can be
// tested without redis.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, bool)
}

// KeyFunc derives the cache key from the request, so tenant-scoped endpoints
// can isolate their entries per caller.
type KeyFunc func(c *fiber.Ctx) string

// Middleware is a read-through cache keyed by an explicit string, sitting in
// front of an expensive listing or aggregation endpoint. The static key is
// only safe for genuinely global responses; anything derived from the caller
// must go through MiddlewareKeyed.
func Middleware(store Getter, key string) fiber.Handler {
	return MiddlewareKeyed(store, func(*fiber.Ctx) string { return key })
}

// MiddlewareKeyed is Middleware with a per-request key. On a hit the
// downstream handler is never invoked; on a miss the downstream is expected
// to populate the key itself.
func MiddlewareKeyed(store Getter, key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := store.Get(c.Context(), key(c))
		if !ok {
			metrics.CacheMisses.Inc()
			return c.Next()
		}
		metrics.CacheHits.Inc()

		var payload any
		if err := json.Unmarshal(b, &payload); err != nil {
			// stale or corrupt entry; fall through to the handler
			return c.Next()
		}
		results := 1
		if arr, ok := payload.([]any); ok {
			results = len(arr)
		}
		return c.JSON(fiber.Map{
			"status":    "success",
			"results":   results,
			"data":      payload,
			"fromCache": true,
		})
	}
}
