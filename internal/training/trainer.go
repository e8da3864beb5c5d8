package training

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/dataset"
	"github.com/mikey/phish-detector/internal/ml"
	"github.com/mikey/phish-detector/internal/textproc"
)

// Options control a training run
type Options struct {
	// DataPath is the CSV to train on; empty or missing falls back to the
	// bundled samples
	DataPath string
	// ModelDir is where the fitted artifacts are written
	ModelDir string
	// TestRatio is the held-out fraction for evaluation
	TestRatio float64
	// Seed fixes the stratified shuffle so runs are reproducible
	Seed int64
	// Alpha is the Naive Bayes smoothing parameter
	Alpha float64
	// MaxFeatures caps the vocabulary size; 0 keeps the default
	MaxFeatures int
}

// DefaultOptions returns the parameters the original model ships with
func DefaultOptions() Options {
	return Options{
		ModelDir:  "model",
		TestRatio: 0.2,
		Seed:      42,
		Alpha:     0.1,
	}
}

// Trainer fits and persists the phishing classification pipeline
type Trainer struct {
	opts      Options
	processor *textproc.Processor
	logger    *zap.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(opts Options, processor *textproc.Processor, logger *zap.Logger) *Trainer {
	return &Trainer{
		opts:      opts,
		processor: processor,
		logger:    logger,
	}
}

// Run loads the dataset, fits the pipeline, evaluates it on the held-out
// split and persists the artifacts. The report is nil when TestRatio is 0.
func (t *Trainer) Run() (*ml.Pipeline, *ml.Report, error) {
	samples, err := dataset.Load(t.opts.DataPath, t.logger)
	if err != nil {
		return nil, nil, err
	}

	legitimate, phishing := dataset.ClassBalance(samples)
	t.logger.Info("Dataset loaded",
		zap.Int("total", len(samples)),
		zap.Int("legitimate", legitimate),
		zap.Int("phishing", phishing))

	trainSet, testSet, err := ml.StratifiedSplit(samples, t.opts.TestRatio, t.opts.Seed)
	if err != nil {
		return nil, nil, err
	}

	pipeline := ml.NewPipeline(t.vectorizerConfig(), t.opts.Alpha)

	start := time.Now()
	docs, labels := t.tokenize(trainSet)
	if err := pipeline.Fit(docs, labels); err != nil {
		return nil, nil, fmt.Errorf("training failed: %w", err)
	}
	t.logger.Info("Model trained",
		zap.Int("training_samples", len(trainSet)),
		zap.Int("vocabulary_size", pipeline.Vectorizer.NumFeatures()),
		zap.Duration("elapsed", time.Since(start)))

	var report *ml.Report
	if len(testSet) > 0 {
		testDocs, actual := t.tokenize(testSet)
		predicted := make([]int, len(testDocs))
		for i, doc := range testDocs {
			predicted[i] = pipeline.Predict(doc)
		}
		report, err = ml.Evaluate(actual, predicted)
		if err != nil {
			return nil, nil, err
		}
		t.logger.Info("Model evaluated",
			zap.Int("test_samples", len(testSet)),
			zap.Float64("accuracy", report.Accuracy))
	}

	if err := ml.SavePipeline(t.opts.ModelDir, pipeline); err != nil {
		return nil, nil, err
	}
	t.logger.Info("Model artifacts saved", zap.String("model_dir", t.opts.ModelDir))

	return pipeline, report, nil
}

func (t *Trainer) vectorizerConfig() ml.VectorizerConfig {
	cfg := ml.DefaultVectorizerConfig()
	if t.opts.MaxFeatures > 0 {
		cfg.MaxFeatures = t.opts.MaxFeatures
	}
	return cfg
}

func (t *Trainer) tokenize(samples []core.LabeledSample) ([][]string, []int) {
	docs := make([][]string, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		docs[i] = t.processor.Tokenize(s.Text)
		labels[i] = s.Label
	}
	return docs, labels
}
