package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS phish_cache (
			text_hash VARCHAR(64) PRIMARY KEY,
			is_phishing BOOLEAN,
			phishing_probability DOUBLE,
			last_seen TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_phish_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached verdict for a message text hash
func (c *MySQLCache) Get(textHash string) (*core.ClassificationResult, bool) {
	var isPhishing bool
	var probability float64
	var lastSeen time.Time

	err := c.db.QueryRow(`
		SELECT is_phishing, phishing_probability, last_seen
		FROM phish_cache
		WHERE text_hash = ? AND expires_at > NOW()
	`, textHash).Scan(&isPhishing, &probability, &lastSeen)

	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("text_hash", textHash))
		}
		return nil, false
	}

	return resultFromEntry(&core.CacheEntry{
		TextHash:            textHash,
		IsPhishing:          isPhishing,
		PhishingProbability: probability,
		LastSeen:            lastSeen,
	}), true
}

// Set stores a verdict
func (c *MySQLCache) Set(textHash string, result *core.ClassificationResult, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.Exec(`
		REPLACE INTO phish_cache (text_hash, is_phishing, phishing_probability, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, textHash, result.IsPhishing, result.PhishingProbability, result.AnalyzedAt, expiresAt)

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("text_hash", textHash))
	}
}

// Delete removes a cached verdict
func (c *MySQLCache) Delete(ctx context.Context, textHash string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM phish_cache WHERE text_hash = ?
	`, textHash)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM phish_cache WHERE expires_at <= NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}

	if expired, err := res.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", expired))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
