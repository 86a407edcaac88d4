package schema

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"searchq/internal/logger"
)

const (
	nameIndexTTL       = 24 * time.Hour
	nameIndexSweepFreq = time.Hour
)

type indexCacheEntry struct {
	index    *NameIndex
	lastUsed time.Time
}

type nameIndexCache struct {
	mu         sync.Mutex
	items      map[string]*indexCacheEntry
	lastSweep  time.Time
	totalBytes int64
	maxBytes   int64
}

var globalIndexCache = &nameIndexCache{
	items: make(map[string]*indexCacheEntry),
}

// SetNameIndexCacheMaxBytes bounds the in-process cache; zero means unbounded.
func SetNameIndexCacheMaxBytes(maxBytes int64) {
	globalIndexCache.mu.Lock()
	defer globalIndexCache.mu.Unlock()
	globalIndexCache.maxBytes = maxBytes
}

func (c *nameIndexCache) get(key string, now time.Time) (*NameIndex, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.lastUsed) > nameIndexTTL {
		c.totalBytes -= estimateIndexBytes(entry.index)
		delete(c.items, key)
		return nil, false
	}
	entry.lastUsed = now
	return entry.index, true
}

func (c *nameIndexCache) set(key string, value *NameIndex, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("name_index_cache_store_failed", map[string]any{
				"error": fmt.Sprintf("%v", r),
			})
			logIndexCacheMemoryHint()
		}
	}()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)

	sizeBytes := estimateIndexBytes(value)
	if c.maxBytes > 0 && c.totalBytes+sizeBytes > c.maxBytes {
		logger.Warn("name_index_cache_limit_exceeded", map[string]any{
			"item_bytes":  sizeBytes,
			"total_bytes": c.totalBytes,
			"max_bytes":   c.maxBytes,
		})
		return
	}

	if existing, ok := c.items[key]; ok {
		c.totalBytes -= estimateIndexBytes(existing.index)
	}
	c.items[key] = &indexCacheEntry{index: value, lastUsed: now}
	c.totalBytes += sizeBytes
}

func (c *nameIndexCache) maybeSweepLocked(now time.Time) {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < nameIndexSweepFreq {
		return
	}
	for key, entry := range c.items {
		if now.Sub(entry.lastUsed) > nameIndexTTL {
			c.totalBytes -= estimateIndexBytes(entry.index)
			delete(c.items, key)
		}
	}
	c.lastSweep = now
}

func logIndexCacheMemoryHint() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	logger.Error("name_index_cache_memory_pressure", map[string]any{
		"alloc_bytes": stats.Alloc,
		"heap_inuse":  stats.HeapInuse,
	})
}

func estimateIndexBytes(idx *NameIndex) int64 {
	if idx == nil {
		return 0
	}
	var size int64
	for k, v := range idx.Fields {
		size += int64(len(k) + len(v))
	}
	for k, v := range idx.Relations {
		size += int64(len(k) + len(v))
	}
	return size
}
