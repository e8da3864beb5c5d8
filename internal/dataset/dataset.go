package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

// LoadCSV reads labeled samples from a CSV file. The header must contain
// "text" and "label" columns (in any order); labels must be 0 or 1.
func LoadCSV(path string) ([]core.LabeledSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("dataset must have 'text' and 'label' columns")
	}

	var samples []core.LabeledSample
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse dataset: %w", err)
		}
		line++
		if len(record) <= textCol || len(record) <= labelCol {
			return nil, fmt.Errorf("line %d: too few columns", line)
		}

		label, err := strconv.Atoi(strings.TrimSpace(record[labelCol]))
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("line %d: label must be 0 or 1, got %q", line, record[labelCol])
		}
		samples = append(samples, core.LabeledSample{
			Text:  record[textCol],
			Label: label,
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("dataset contains no rows")
	}
	return samples, nil
}

// Load returns samples from the CSV at path, falling back to the bundled
// sample dataset when no path is given or the file does not exist. A present
// but malformed file is an error, not a fallback.
func Load(path string, logger *zap.Logger) ([]core.LabeledSample, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			logger.Info("Loading dataset from file", zap.String("path", path))
			return LoadCSV(path)
		}
		logger.Warn("Dataset file not found, using bundled samples", zap.String("path", path))
	} else {
		logger.Info("Using bundled sample dataset")
	}
	return SampleDataset(), nil
}

// ClassBalance counts legitimate and phishing samples
func ClassBalance(samples []core.LabeledSample) (legitimate, phishing int) {
	for _, s := range samples {
		if s.Label == 1 {
			phishing++
		} else {
			legitimate++
		}
	}
	return legitimate, phishing
}
