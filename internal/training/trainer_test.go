package training

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/ml"
	"github.com/mikey/phish-detector/internal/textproc"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.ModelDir = t.TempDir()
	return opts
}

func TestTrainerRunOnBundledSamples(t *testing.T) {
	opts := testOptions(t)
	trainer := NewTrainer(opts, textproc.NewProcessor(zap.NewNop()), zap.NewNop())

	pipeline, report, err := trainer.Run()
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	require.NotNil(t, report)

	assert.Greater(t, pipeline.Vectorizer.NumFeatures(), 0)
	// 20% of 40 samples held out
	assert.Equal(t, 8, report.Support)
	assert.GreaterOrEqual(t, report.Accuracy, 0.5)

	for _, name := range []string{ml.VectorizerFile, ml.ClassifierFile} {
		_, err := os.Stat(filepath.Join(opts.ModelDir, name))
		assert.NoError(t, err, "artifact %s should exist", name)
	}
}

func TestTrainerPersistedModelIsUsable(t *testing.T) {
	opts := testOptions(t)
	processor := textproc.NewProcessor(zap.NewNop())
	trainer := NewTrainer(opts, processor, zap.NewNop())

	trained, _, err := trainer.Run()
	require.NoError(t, err)

	loaded, err := ml.LoadPipeline(opts.ModelDir)
	require.NoError(t, err)

	tokens := processor.Tokenize("Click here to verify your account now!")
	assert.Equal(t, trained.PredictProba(tokens), loaded.PredictProba(tokens))
	assert.Equal(t, 1, loaded.Predict(tokens))
}

func TestTrainerDeterministicForFixedSeed(t *testing.T) {
	run := func() *ml.Pipeline {
		opts := testOptions(t)
		trainer := NewTrainer(opts, textproc.NewProcessor(zap.NewNop()), zap.NewNop())
		pipeline, _, err := trainer.Run()
		require.NoError(t, err)
		return pipeline
	}

	p1 := run()
	p2 := run()
	assert.Equal(t, p1.Vectorizer.Vocabulary, p2.Vectorizer.Vocabulary)
	assert.Equal(t, p1.Classifier.ClassLogPrior, p2.Classifier.ClassLogPrior)
	assert.Equal(t, p1.Classifier.FeatureLogProb, p2.Classifier.FeatureLogProb)
}

func TestTrainerSkipsEvaluationWithoutTestSplit(t *testing.T) {
	opts := testOptions(t)
	opts.TestRatio = 0
	trainer := NewTrainer(opts, textproc.NewProcessor(zap.NewNop()), zap.NewNop())

	pipeline, report, err := trainer.Run()
	require.NoError(t, err)
	assert.NotNil(t, pipeline)
	assert.Nil(t, report)
}

func TestTrainerTrainsFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "emails.csv")
	content := "text,label\n"
	for i := 0; i < 10; i++ {
		content += "Click here to claim your free prize and verify your password,1\n"
		content += "The project review meeting is scheduled for Thursday afternoon,0\n"
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	opts := testOptions(t)
	opts.DataPath = csvPath
	trainer := NewTrainer(opts, textproc.NewProcessor(zap.NewNop()), zap.NewNop())

	pipeline, report, err := trainer.Run()
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Greater(t, pipeline.Vectorizer.NumFeatures(), 0)
	assert.Equal(t, 4, report.Support)
}

func TestTrainerRejectsMalformedCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("text,label\noops,5\n"), 0644))

	opts := testOptions(t)
	opts.DataPath = csvPath
	_, _, err := NewTrainer(opts, textproc.NewProcessor(zap.NewNop()), zap.NewNop()).Run()
	assert.Error(t, err)
}
