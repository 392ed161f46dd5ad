package cache

import (
	"strconv"
	"sync"
	"time"

	"tfidx/internal/domain"
	"tfidx/internal/metrics"
	"tfidx/internal/port"
)

// QueryCache is a size-bounded LRU of search results with a TTL.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	result    domain.SearchResult
	timestamp time.Time
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string, topK int) string {
	return strconv.Itoa(topK) + "\x00" + query
}

func (c *QueryCache) Get(query string, topK int) (domain.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK)
	entry, exists := c.entries[key]
	if !exists {
		return domain.SearchResult{}, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return domain.SearchResult{}, false
	}

	c.moveToEnd(key)
	return entry.result, true
}

func (c *QueryCache) Put(query string, topK int, result domain.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK)
	entry := &cacheEntry{
		result:    result,
		timestamp: c.now(),
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedRetriever answers repeated queries from a QueryCache.
type CachedRetriever struct {
	retriever port.Retriever
	cache     *QueryCache
	metrics   *metrics.Metrics
}

func NewCachedRetriever(retriever port.Retriever, cache *QueryCache, m *metrics.Metrics) *CachedRetriever {
	return &CachedRetriever{
		retriever: retriever,
		cache:     cache,
		metrics:   m,
	}
}

func (r *CachedRetriever) Search(query string, k int) (domain.SearchResult, error) {
	if result, hit := r.cache.Get(query, k); hit {
		r.metrics.CacheHit()
		return result, nil
	}
	r.metrics.CacheMiss()

	result, err := r.retriever.Search(query, k)
	if err != nil {
		return domain.SearchResult{}, err
	}

	r.cache.Put(query, k, result)
	return result, nil
}
