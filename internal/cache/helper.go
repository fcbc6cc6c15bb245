package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Key formats and TTLs for cached reads.
const (
	userKeyFormat   = "user:%d"
	postKeyFormat   = "post:%d"
	authorKeyFormat = "author:%d"

	UserTTL   = 5 * time.Minute
	PostTTL   = 10 * time.Minute
	AuthorTTL = 10 * time.Minute
)

// UserKey is the cache key for a user profile.
func UserKey(userID uint) string { return fmt.Sprintf(userKeyFormat, userID) }

// PostKey is the cache key for a post detail.
func PostKey(postID uint) string { return fmt.Sprintf(postKeyFormat, postID) }

// AuthorKey is the cache key for an author with nested books.
func AuthorKey(authorID uint) string { return fmt.Sprintf(authorKeyFormat, authorID) }

// GetJSON reads key into dest. It reports whether the key was present.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	s, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Aside serves key from Redis, or calls fetch to fill dest and caches the result.
// Redis failures degrade to fetch; they never fail the read.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, rdb, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues("error").Inc()
	case found:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}
	_ = SetJSON(ctx, rdb, key, dest, ttl)
	return nil
}

// Invalidate removes keys, ignoring errors.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	rdb.Del(ctx, keys...)
}
