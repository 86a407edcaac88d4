package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"searchq/internal/db"
	"searchq/internal/logger"
)

// WarmNameIndexes prebuilds the resolution tables for every registered
// entity under the given policy, going through Redis when available. It runs
// at startup so name resolution itself never touches the network.
func WarmNameIndexes(ctx context.Context, policy NamingPolicy, useAliases bool) {
	for _, e := range Registry {
		_ = indexFor(ctx, e, policy, useAliases)
	}
}

// indexFor returns the resolution table for an entity under a policy,
// consulting the in-process cache, then the Redis warm copy, and building
// from the registry as a last resort. Cached content derives only from
// startup configuration, so staleness is bounded by the TTL.
func indexFor(ctx context.Context, e *Entity, policy NamingPolicy, useAliases bool) *NameIndex {
	key := fmt.Sprintf("%s|%s|aliases=%t", e.Name, policy.Name, useAliases)
	now := time.Now()

	if idx, ok := globalIndexCache.get(key, now); ok {
		return idx
	}

	if db.RDB != nil {
		redisKey := "nameindex:" + key
		cachedStr, err := db.RDB.Get(ctx, redisKey).Result()
		if err == nil {
			var idx NameIndex
			if err := json.Unmarshal([]byte(cachedStr), &idx); err == nil {
				globalIndexCache.set(key, &idx, now)
				return &idx
			}
			logger.Warn("name_index_redis_invalid", map[string]any{
				"key":   redisKey,
				"error": err.Error(),
			})
		}
	}

	idx := BuildNameIndex(e, policy, useAliases)
	globalIndexCache.set(key, idx, now)

	if db.RDB != nil {
		redisKey := "nameindex:" + key
		if data, err := json.Marshal(idx); err == nil {
			if err := db.RDB.Set(ctx, redisKey, data, 2*time.Hour).Err(); err != nil {
				logger.Warn("name_index_redis_store_failed", map[string]any{
					"key":   redisKey,
					"error": err.Error(),
				})
			}
		}
	}
	return idx
}
