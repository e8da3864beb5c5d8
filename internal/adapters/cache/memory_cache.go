package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

// ErrNotFound is returned when a cache entry is not found
var ErrNotFound = errors.New("cache entry not found")

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	entries     map[string]*core.CacheEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*core.CacheEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache
}

// Get retrieves a cached verdict for a message text hash
func (c *MemoryCache) Get(textHash string) (*core.ClassificationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[textHash]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	return resultFromEntry(entry), true
}

// Set stores a verdict
func (c *MemoryCache) Set(textHash string, result *core.ClassificationResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[textHash] = &core.CacheEntry{
		TextHash:            textHash,
		IsPhishing:          result.IsPhishing,
		PhishingProbability: result.PhishingProbability,
		LastSeen:            result.AnalyzedAt,
		ExpiresAt:           time.Now().Add(ttl),
	}
}

// Delete removes a cached verdict
func (c *MemoryCache) Delete(ctx context.Context, textHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, textHash)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// resultFromEntry rebuilds a classification result from a persisted verdict
func resultFromEntry(entry *core.CacheEntry) *core.ClassificationResult {
	result := &core.ClassificationResult{
		IsPhishing:            entry.IsPhishing,
		PhishingProbability:   entry.PhishingProbability,
		LegitimateProbability: 1 - entry.PhishingProbability,
		AnalyzedAt:            entry.LastSeen,
	}
	if entry.IsPhishing {
		result.Label = core.LabelPhishing
		result.Confidence = result.PhishingProbability
	} else {
		result.Label = core.LabelLegitimate
		result.Confidence = result.LegitimateProbability
	}
	return result
}
