package core

import (
	"context"
	"time"
)

// Classifier defines the interface for classification backends
type Classifier interface {
	// ClassifyEmail decides whether an email is a phishing attempt
	ClassifyEmail(ctx context.Context, email *Email) (*ClassificationResult, error)
}

// CacheRepository defines the interface for caching classification verdicts
type CacheRepository interface {
	// Get retrieves a cached verdict for a message text hash
	Get(textHash string) (*ClassificationResult, bool)

	// Set stores a verdict
	Set(textHash string, result *ClassificationResult, ttl time.Duration)

	// Delete removes a cached verdict
	Delete(ctx context.Context, textHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
