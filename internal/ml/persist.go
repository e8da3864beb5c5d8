package ml

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the model directory. The trainer writes both;
// inference refuses to start unless both exist.
const (
	VectorizerFile = "vectorizer.gob"
	ClassifierFile = "classifier.gob"
)

// ErrModelNotFound is returned when the persisted model artifacts are missing
var ErrModelNotFound = errors.New("model artifacts not found")

// SavePipeline persists the fitted vectorizer and classifier as two separate
// artifacts under dir, creating the directory if needed.
func SavePipeline(dir string, p *Pipeline) error {
	if p.Vectorizer == nil || p.Vectorizer.Vocabulary == nil {
		return fmt.Errorf("cannot persist an unfitted pipeline")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	if err := writeArtifact(filepath.Join(dir, VectorizerFile), p.Vectorizer); err != nil {
		return fmt.Errorf("failed to persist vectorizer: %w", err)
	}
	if err := writeArtifact(filepath.Join(dir, ClassifierFile), p.Classifier); err != nil {
		return fmt.Errorf("failed to persist classifier: %w", err)
	}
	return nil
}

// LoadPipeline reads the persisted artifacts from dir. A missing artifact is
// reported as ErrModelNotFound so callers can tell the user to train first.
func LoadPipeline(dir string) (*Pipeline, error) {
	p := &Pipeline{
		Vectorizer: &Vectorizer{},
		Classifier: &NaiveBayes{},
	}

	if err := readArtifact(filepath.Join(dir, VectorizerFile), p.Vectorizer); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer: %w", err)
	}
	if err := readArtifact(filepath.Join(dir, ClassifierFile), p.Classifier); err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	if p.Vectorizer.NumFeatures() == 0 || p.Classifier.NumFeatures == 0 {
		return nil, fmt.Errorf("model artifacts in %s are empty or corrupt", dir)
	}
	return p, nil
}

func writeArtifact(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readArtifact(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(v)
}
