package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/whitelist"
)

// DetectorService is the core service for phishing detection
type DetectorService struct {
	classifier   Classifier
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	threshold    float64
	trusted      *whitelist.Checker
}

// NewDetectorService creates a new phishing detector service
func NewDetectorService(
	classifier Classifier,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	threshold float64,
	trusted *whitelist.Checker,
) *DetectorService {
	return &DetectorService{
		classifier:   classifier,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		threshold:    threshold,
		trusted:      trusted,
	}
}

// ClassifyEmail decides whether an email is a phishing attempt
func (s *DetectorService) ClassifyEmail(ctx context.Context, email *Email) (*ClassificationResult, error) {
	// Trusted sender domains bypass classification entirely
	if s.trusted.IsTrusted(email.From) {
		s.logger.Info("Skipping classification for trusted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		return &ClassificationResult{
			IsPhishing:            false,
			Label:                 LabelLegitimate,
			Confidence:            1.0,
			PhishingProbability:   0.0,
			LegitimateProbability: 1.0,
			Explanation:           "Sender domain is trusted",
			AnalyzedAt:            time.Now(),
			ModelUsed:             "whitelist",
		}, nil
	}

	textHash := HashText(email.Text())

	if s.cacheEnabled {
		if cached, ok := s.cache.Get(textHash); ok {
			s.logger.Debug("Cache hit for message", zap.String("text_hash", textHash))
			cached.Explanation = "Result from cache"
			cached.ModelUsed = "cache"
			cached.AnalyzedAt = time.Now()
			// Only the probability is authoritative in the cache; the verdict
			// is re-derived so a threshold change takes effect immediately
			s.applyThreshold(cached)
			return cached, nil
		}
	}

	result, err := s.classifier.ClassifyEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// The threshold turns the phishing probability into the binary verdict
	s.applyThreshold(result)

	if s.cacheEnabled {
		s.cache.Set(textHash, result, s.cacheTTL)
	}

	return result, nil
}

// applyThreshold re-derives the verdict and label from the phishing probability
func (s *DetectorService) applyThreshold(result *ClassificationResult) {
	result.IsPhishing = result.PhishingProbability >= s.threshold
	if result.IsPhishing {
		result.Label = LabelPhishing
		result.Confidence = result.PhishingProbability
	} else {
		result.Label = LabelLegitimate
		result.Confidence = result.LegitimateProbability
	}
}

// Threshold returns the configured phishing probability threshold
func (s *DetectorService) Threshold() float64 {
	return s.threshold
}

// HashText returns the cache key for a message text
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
