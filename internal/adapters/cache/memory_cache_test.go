package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func phishingResult(prob float64) *core.ClassificationResult {
	return &core.ClassificationResult{
		IsPhishing:          prob >= 0.5,
		PhishingProbability: prob,
		AnalyzedAt:          time.Now(),
	}
}

func TestMemoryCacheSetAndGet(t *testing.T) {
	c := newTestCache(t)

	c.Set("hash-1", phishingResult(0.9), time.Hour)

	got, ok := c.Get("hash-1")
	require.True(t, ok)
	assert.True(t, got.IsPhishing)
	assert.Equal(t, core.LabelPhishing, got.Label)
	assert.InDelta(t, 0.9, got.PhishingProbability, 1e-12)
	assert.InDelta(t, 0.1, got.LegitimateProbability, 1e-12)
	assert.InDelta(t, 0.9, got.Confidence, 1e-12)
}

func TestMemoryCacheRebuildsLegitimateVerdict(t *testing.T) {
	c := newTestCache(t)

	c.Set("hash-legit", phishingResult(0.2), time.Hour)

	got, ok := c.Get("hash-legit")
	require.True(t, ok)
	assert.False(t, got.IsPhishing)
	assert.Equal(t, core.LabelLegitimate, got.Label)
	assert.InDelta(t, 0.8, got.Confidence, 1e-12)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Get("never-stored")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("hash-expired", phishingResult(0.9), -time.Second)

	_, ok := c.Get("hash-expired")
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)

	c.Set("hash-1", phishingResult(0.9), time.Hour)
	require.NoError(t, c.Delete(context.Background(), "hash-1"))

	_, ok := c.Get("hash-1")
	assert.False(t, ok)

	// Deleting a missing key is not an error
	assert.NoError(t, c.Delete(context.Background(), "hash-1"))
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)

	c.Set("live", phishingResult(0.9), time.Hour)
	c.Set("dead", phishingResult(0.9), -time.Second)

	require.NoError(t, c.Cleanup(context.Background()))

	_, ok := c.Get("live")
	assert.True(t, ok)

	c.mu.RLock()
	_, stillStored := c.entries["dead"]
	c.mu.RUnlock()
	assert.False(t, stillStored)
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	c.Stop()
	c.Stop()
}
