package core

import (
	"time"
)

// Labels assigned by the classifier.
const (
	LabelPhishing   = "PHISHING"
	LabelLegitimate = "LEGITIMATE"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Text returns the content that gets classified: the subject followed by the body.
func (e *Email) Text() string {
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + "\n" + e.Body
}

// ClassificationResult represents the result of classifying an email
type ClassificationResult struct {
	IsPhishing            bool
	Label                 string
	Confidence            float64
	PhishingProbability   float64
	LegitimateProbability float64
	Explanation           string
	AnalyzedAt            time.Time
	ModelUsed             string
	ProcessingID          string
}

// CacheEntry is a persisted verdict keyed by the hash of the normalized message text
type CacheEntry struct {
	TextHash            string
	IsPhishing          bool
	PhishingProbability float64
	LastSeen            time.Time
	ExpiresAt           time.Time
}

// LabeledSample is a single training example: raw email text plus a binary
// label (1 = phishing, 0 = legitimate).
type LabeledSample struct {
	Text  string
	Label int
}
