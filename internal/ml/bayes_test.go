package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveBayesFitAndPredict(t *testing.T) {
	nb := NewNaiveBayes(0.1)
	vectors := []Vector{
		{0: 1.0},
		{0: 0.8, 2: 0.2},
		{1: 1.0},
		{1: 0.9, 2: 0.1},
	}
	labels := []int{1, 1, 0, 0}

	require.NoError(t, nb.Fit(vectors, labels, 3))

	assert.Equal(t, 1, nb.Predict(Vector{0: 1.0}))
	assert.Equal(t, 0, nb.Predict(Vector{1: 1.0}))
}

func TestNaiveBayesProbabilitiesSumToOne(t *testing.T) {
	nb := NewNaiveBayes(0.1)
	vectors := []Vector{{0: 1.0}, {1: 1.0}}
	labels := []int{1, 0}
	require.NoError(t, nb.Fit(vectors, labels, 2))

	for _, vec := range []Vector{{0: 1.0}, {1: 1.0}, {0: 0.5, 1: 0.5}, {}} {
		probs := nb.PredictProba(vec)
		assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)
		assert.GreaterOrEqual(t, probs[0], 0.0)
		assert.GreaterOrEqual(t, probs[1], 0.0)
	}
}

func TestNaiveBayesPredictProbaBitIdentical(t *testing.T) {
	nb := NewNaiveBayes(0.1)
	vectors := []Vector{
		{0: 0.6, 2: 0.8},
		{1: 0.7, 3: 0.7},
		{0: 0.5, 1: 0.5, 2: 0.7},
		{2: 0.3, 3: 0.9},
	}
	labels := []int{1, 0, 1, 0}
	require.NoError(t, nb.Fit(vectors, labels, 4))

	query := Vector{0: 0.4, 1: 0.3, 2: 0.5, 3: 0.7}
	reference := nb.PredictProba(query)
	for i := 0; i < 20; i++ {
		// Fresh map each round to vary iteration order
		fresh := Vector{3: 0.7, 1: 0.3, 0: 0.4, 2: 0.5}
		assert.Equal(t, reference, nb.PredictProba(fresh))
	}
}

func TestNaiveBayesUnevenPriors(t *testing.T) {
	nb := NewNaiveBayes(0.1)
	// Three legitimate samples to one phishing sample, identical features
	vectors := []Vector{{0: 1.0}, {0: 1.0}, {0: 1.0}, {0: 1.0}}
	labels := []int{0, 0, 0, 1}
	require.NoError(t, nb.Fit(vectors, labels, 1))

	// With indistinguishable features the prior decides
	probs := nb.PredictProba(Vector{0: 1.0})
	assert.Greater(t, probs[0], probs[1])
}

func TestNaiveBayesAlphaFloor(t *testing.T) {
	nb := NewNaiveBayes(0)
	assert.Equal(t, 1e-10, nb.Alpha)

	nb = NewNaiveBayes(-1)
	assert.Equal(t, 1e-10, nb.Alpha)

	nb = NewNaiveBayes(0.5)
	assert.Equal(t, 0.5, nb.Alpha)
}

func TestNaiveBayesFitErrors(t *testing.T) {
	tests := []struct {
		name        string
		vectors     []Vector
		labels      []int
		numFeatures int
	}{
		{
			name:        "mismatched lengths",
			vectors:     []Vector{{0: 1.0}},
			labels:      []int{0, 1},
			numFeatures: 1,
		},
		{
			name:        "empty training set",
			vectors:     nil,
			labels:      nil,
			numFeatures: 1,
		},
		{
			name:        "empty feature space",
			vectors:     []Vector{{0: 1.0}, {0: 1.0}},
			labels:      []int{0, 1},
			numFeatures: 0,
		},
		{
			name:        "invalid label",
			vectors:     []Vector{{0: 1.0}, {0: 1.0}},
			labels:      []int{0, 2},
			numFeatures: 1,
		},
		{
			name:        "single class only",
			vectors:     []Vector{{0: 1.0}, {0: 1.0}},
			labels:      []int{1, 1},
			numFeatures: 1,
		},
		{
			name:        "feature index out of range",
			vectors:     []Vector{{5: 1.0}, {0: 1.0}},
			labels:      []int{1, 0},
			numFeatures: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := NewNaiveBayes(0.1)
			assert.Error(t, nb.Fit(tt.vectors, tt.labels, tt.numFeatures))
		})
	}
}
