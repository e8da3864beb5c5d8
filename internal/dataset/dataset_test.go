package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emails.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "text,label\n"+
		"\"Click here to win, fast!\",1\n"+
		"Meeting at 10 AM tomorrow,0\n")

	samples, err := LoadCSV(path)
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, core.LabeledSample{Text: "Click here to win, fast!", Label: 1}, samples[0])
	assert.Equal(t, core.LabeledSample{Text: "Meeting at 10 AM tomorrow", Label: 0}, samples[1])
}

func TestLoadCSVColumnOrder(t *testing.T) {
	path := writeCSV(t, "label,text\n1,Verify your account\n")

	samples, err := LoadCSV(path)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Equal(t, "Verify your account", samples[0].Text)
	assert.Equal(t, 1, samples[0].Label)
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "missing label column",
			content: "text,category\nhello,1\n",
			errText: "'text' and 'label' columns",
		},
		{
			name:    "missing text column",
			content: "body,label\nhello,1\n",
			errText: "'text' and 'label' columns",
		},
		{
			name:    "non-numeric label",
			content: "text,label\nhello,spam\n",
			errText: "label must be 0 or 1",
		},
		{
			name:    "label out of range",
			content: "text,label\nhello,2\n",
			errText: "label must be 0 or 1",
		},
		{
			name:    "header only",
			content: "text,label\n",
			errText: "no rows",
		},
		{
			name:    "empty file",
			content: "",
			errText: "header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(writeCSV(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoadFallsBackToSamples(t *testing.T) {
	logger := zap.NewNop()

	// No path given
	samples, err := Load("", logger)
	require.NoError(t, err)
	assert.Len(t, samples, 40)

	// Path given but file missing
	samples, err = Load(filepath.Join(t.TempDir(), "absent.csv"), logger)
	require.NoError(t, err)
	assert.Len(t, samples, 40)
}

func TestLoadPrefersExistingFile(t *testing.T) {
	path := writeCSV(t, "text,label\ncustom sample,1\nanother one,0\n")

	samples, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestLoadMalformedFileIsNotAFallback(t *testing.T) {
	path := writeCSV(t, "text,label\nbroken,9\n")

	_, err := Load(path, zap.NewNop())
	assert.Error(t, err)
}

func TestSampleDataset(t *testing.T) {
	samples := SampleDataset()
	require.Len(t, samples, 40)

	legitimate, phishing := ClassBalance(samples)
	assert.Equal(t, 20, legitimate)
	assert.Equal(t, 20, phishing)

	for _, s := range samples {
		assert.NotEmpty(t, s.Text)
	}
}
