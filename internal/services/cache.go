package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

// CachedSummary is what the cache keeps per resort and window: the reduced
// values, never the raw series.
type CachedSummary struct {
	Summary   models.ResortSummary
	Sky       string
	FetchedAt time.Time
}

type CacheItem struct {
	Data      CachedSummary
	ExpiresAt time.Time
}

// SummaryCache is a TTL cache of resort summaries keyed by resort and window.
type SummaryCache struct {
	mu              sync.RWMutex
	items           map[string]CacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	hits            int
	misses          int
}

func NewSummaryCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *SummaryCache {
	cache := &SummaryCache{
		items:           make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

func cacheKey(resort string, window models.Window) string {
	return resort + "|" + window.StartDate() + "|" + window.EndDate()
}

func (c *SummaryCache) Set(resort string, window models.Window, data CachedSummary) {
	if c.defaultDuration <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(resort, window)
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := time.Now().Add(c.defaultDuration)
	c.items[key] = CacheItem{Data: data, ExpiresAt: expiresAt}

	c.logger.Debug("Summary cached",
		zap.String("resort", resort),
		zap.String("window", window.String()),
		zap.Time("expires_at", expiresAt))
}

func (c *SummaryCache) Get(resort string, window models.Window) (CachedSummary, bool) {
	key := cacheKey(resort, window)

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return CachedSummary{}, false
	}

	if time.Now().After(item.ExpiresAt) {
		delete(c.items, key)
		c.misses++
		return CachedSummary{}, false
	}

	c.hits++
	return item.Data, true
}

func (c *SummaryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("Evicted oldest summary from cache", zap.String("key", oldestKey))
	}
}

func (c *SummaryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *SummaryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items", zap.Int("count", expiredCount))
	}
}

func (c *SummaryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (c *SummaryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *SummaryCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"items":            len(c.items),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
