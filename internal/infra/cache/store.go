package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	searchGenerationKey = "cache:gen:search"
	locationGenPrefix   = "cache:gen:loc:"
	responsePrefix      = "cache:resp:"
)

// Store caches read responses. Entries are never deleted; bumping a
// generation counter makes every key derived from it unreachable.
// A nil Store or a Store without a client does nothing.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) enabled() bool {
	return s != nil && s.rdb != nil
}

// InvalidateLocations drops cached views of the given locations and every
// cached list or search.
func (s *Store) InvalidateLocations(ctx context.Context, ids ...uuid.UUID) {
	if !s.enabled() {
		return
	}
	pipe := s.rdb.Pipeline()
	pipe.Incr(ctx, searchGenerationKey)
	for _, id := range ids {
		pipe.Incr(ctx, locationGenPrefix+id.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("cache invalidation failed", "locations", len(ids), "error", err)
	}
}

func (s *Store) generation(ctx context.Context, key string) string {
	gen, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil means never invalidated
		return "0"
	}
	return gen
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return bs, true
}

func (s *Store) set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if err := s.rdb.SetEx(ctx, key, body, ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}
