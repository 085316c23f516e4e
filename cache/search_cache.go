package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"AutoDJ/db"
	"AutoDJ/model"

	"github.com/redis/go-redis/v9"
)

// searchKey generates the Redis key for a genre search term.
func searchKey(term string) string {
	return fmt.Sprintf("search:genre:%s", strings.ToLower(strings.TrimSpace(term)))
}

// GetSearchResults returns cached candidate tracks for a search term, or
// (nil, nil) on a cache miss.
func GetSearchResults(ctx context.Context, term string) ([]model.Track, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	data, err := db.RedisClient.Get(ctx, searchKey(term)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search cache for %q: %w", term, err)
	}

	var tracks []model.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached search results for %q: %w", term, err)
	}
	return tracks, nil
}

// SetSearchResults caches candidate tracks for a search term with the given TTL.
func SetSearchResults(ctx context.Context, term string, tracks []model.Track, ttl time.Duration) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal search results for %q: %w", term, err)
	}

	if err := db.RedisClient.Set(ctx, searchKey(term), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write search cache for %q: %w", term, err)
	}
	return nil
}
