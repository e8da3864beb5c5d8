package localmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/ml"
	"github.com/mikey/phish-detector/internal/textproc"
)

// Classifier scores emails with the persisted TF-IDF + Naive Bayes pipeline.
// The pipeline is loaded once and read-only afterwards, so classification is
// safe for concurrent use.
type Classifier struct {
	pipeline  *ml.Pipeline
	processor *textproc.Processor
	logger    *zap.Logger
}

// New creates a classifier around an already loaded pipeline
func New(pipeline *ml.Pipeline, processor *textproc.Processor, logger *zap.Logger) *Classifier {
	return &Classifier{
		pipeline:  pipeline,
		processor: processor,
		logger:    logger,
	}
}

// Load reads the persisted model artifacts from modelDir and builds a
// classifier. A missing artifact surfaces as ml.ErrModelNotFound.
func Load(modelDir string, processor *textproc.Processor, logger *zap.Logger) (*Classifier, error) {
	pipeline, err := ml.LoadPipeline(modelDir)
	if err != nil {
		return nil, err
	}

	logger.Info("Model artifacts loaded",
		zap.String("model_dir", modelDir),
		zap.Int("vocabulary_size", pipeline.Vectorizer.NumFeatures()))

	return New(pipeline, processor, logger), nil
}

// ClassifyEmail decides whether an email is a phishing attempt
func (c *Classifier) ClassifyEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := c.processor.Tokenize(email.Text())
	probs := c.pipeline.PredictProba(tokens)

	result := &core.ClassificationResult{
		LegitimateProbability: probs[0],
		PhishingProbability:   probs[1],
		Confidence:            probs[0],
		AnalyzedAt:            time.Now(),
		ModelUsed:             "tfidf-naive-bayes",
		ProcessingID:          uuid.NewString(),
	}
	if probs[1] > probs[0] {
		result.IsPhishing = true
		result.Label = core.LabelPhishing
		result.Confidence = probs[1]
		result.Explanation = "Message text matches learned phishing patterns"
	} else {
		result.Label = core.LabelLegitimate
		result.Explanation = "Message text does not match learned phishing patterns"
	}

	c.logger.Debug("Classified email",
		zap.String("processing_id", result.ProcessingID),
		zap.Int("tokens", len(tokens)),
		zap.Float64("phishing_probability", probs[1]))

	return result, nil
}

// Describe returns a short human readable summary of the loaded model
func (c *Classifier) Describe() string {
	return fmt.Sprintf("tfidf-naive-bayes (%d features, alpha=%g)",
		c.pipeline.Vectorizer.NumFeatures(), c.pipeline.Classifier.Alpha)
}
