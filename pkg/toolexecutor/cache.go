package toolexecutor

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached result stays valid
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	result     any
	insertedAt time.Time
}

// ResultCache keeps tool results keyed by tool id and parameters. Entries
// expire lazily on read; there is no size bound.
type ResultCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// NewResultCache creates a cache. A zero ttl uses DefaultCacheTTL and a nil
// clock uses time.Now.
func NewResultCache(ttl time.Duration, now func() time.Time) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}

	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// CacheKey derives the cache key for a tool invocation. encoding/json writes
// map keys in sorted order, so equal parameter maps give equal keys.
func CacheKey(toolID string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	sum := md5.Sum([]byte(toolID + ":" + string(encoded)))
	return hex.EncodeToString(sum[:]), nil
}

// Get returns a live cached result. Expired entries are dropped.
func (c *ResultCache) Get(toolID string, params map[string]any) (any, bool) {
	key, err := CacheKey(toolID, params)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

// Put stores a result. Nil results and unencodable parameters are not cached.
func (c *ResultCache) Put(toolID string, params map[string]any, result any) {
	if result == nil {
		return
	}
	key, err := CacheKey(toolID, params)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{result: result, insertedAt: c.now()}
}

// Len returns the number of stored entries, expired or not
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear drops every entry
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
