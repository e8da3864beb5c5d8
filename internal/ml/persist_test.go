package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedPipeline(t *testing.T) *Pipeline {
	t.Helper()

	p := NewPipeline(VectorizerConfig{NgramMin: 1, NgramMax: 2}, 0.1)
	docs := [][]string{
		{"click", "verify", "account", "password"},
		{"urgent", "click", "prize", "winner"},
		{"meeting", "agenda", "tomorrow"},
		{"lunch", "tomorrow", "thanks"},
	}
	labels := []int{1, 1, 0, 0}
	require.NoError(t, p.Fit(docs, labels))
	return p
}

func TestSaveAndLoadPipeline(t *testing.T) {
	dir := t.TempDir()
	p := fittedPipeline(t)

	require.NoError(t, SavePipeline(dir, p))

	for _, name := range []string{VectorizerFile, ClassifierFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	loaded, err := LoadPipeline(dir)
	require.NoError(t, err)

	assert.Equal(t, p.Vectorizer.Vocabulary, loaded.Vectorizer.Vocabulary)
	assert.Equal(t, p.Vectorizer.IDF, loaded.Vectorizer.IDF)
	assert.Equal(t, p.Classifier.Alpha, loaded.Classifier.Alpha)
	assert.Equal(t, p.Classifier.NumFeatures, loaded.Classifier.NumFeatures)

	// Loaded model scores identically to the in-memory one
	tokens := []string{"click", "verify", "password"}
	assert.Equal(t, p.PredictProba(tokens), loaded.PredictProba(tokens))
}

func TestSavePipelineCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "model")

	require.NoError(t, SavePipeline(dir, fittedPipeline(t)))

	_, err := os.Stat(filepath.Join(dir, VectorizerFile))
	assert.NoError(t, err)
}

func TestSavePipelineRefusesUnfitted(t *testing.T) {
	p := NewPipeline(DefaultVectorizerConfig(), 0.1)
	assert.Error(t, SavePipeline(t.TempDir(), p))
}

func TestLoadPipelineMissingArtifacts(t *testing.T) {
	_, err := LoadPipeline(t.TempDir())
	assert.ErrorIs(t, err, ErrModelNotFound)

	// One artifact present is still a missing model
	dir := t.TempDir()
	require.NoError(t, SavePipeline(dir, fittedPipeline(t)))
	require.NoError(t, os.Remove(filepath.Join(dir, ClassifierFile)))

	_, err = LoadPipeline(dir)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
