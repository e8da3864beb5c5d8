package ml

import (
	"fmt"
	"math"
	"sort"
)

// NaiveBayes is a two-class multinomial Naive Bayes classifier over TF-IDF
// features. Class 0 is legitimate, class 1 is phishing.
type NaiveBayes struct {
	// Alpha is the Lidstone smoothing parameter
	Alpha float64
	// ClassLogPrior holds the log prior probability of each class
	ClassLogPrior [2]float64
	// FeatureLogProb holds the smoothed log likelihood of each feature per class
	FeatureLogProb [2][]float64
	// NumFeatures is the feature space size the classifier was fitted on
	NumFeatures int
}

// NewNaiveBayes creates an unfitted classifier with the given smoothing
func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = 1e-10
	}
	return &NaiveBayes{Alpha: alpha}
}

// Fit learns class priors and feature likelihoods from training vectors
func (nb *NaiveBayes) Fit(vectors []Vector, labels []int, numFeatures int) error {
	if len(vectors) != len(labels) {
		return fmt.Errorf("vector count %d does not match label count %d", len(vectors), len(labels))
	}
	if len(vectors) == 0 {
		return fmt.Errorf("cannot fit classifier on an empty training set")
	}
	if numFeatures <= 0 {
		return fmt.Errorf("feature space must not be empty")
	}

	var classCount [2]int
	var featureSum [2][]float64
	featureSum[0] = make([]float64, numFeatures)
	featureSum[1] = make([]float64, numFeatures)

	for i, vec := range vectors {
		label := labels[i]
		if label != 0 && label != 1 {
			return fmt.Errorf("label must be 0 or 1, got %d", label)
		}
		classCount[label]++
		for idx, val := range vec {
			if idx < 0 || idx >= numFeatures {
				return fmt.Errorf("feature index %d out of range [0,%d)", idx, numFeatures)
			}
			featureSum[label][idx] += val
		}
	}
	if classCount[0] == 0 || classCount[1] == 0 {
		return fmt.Errorf("training set must contain both classes (got %d legitimate, %d phishing)",
			classCount[0], classCount[1])
	}

	total := float64(len(vectors))
	for c := 0; c < 2; c++ {
		nb.ClassLogPrior[c] = math.Log(float64(classCount[c]) / total)

		var classTotal float64
		for _, v := range featureSum[c] {
			classTotal += v
		}
		denom := math.Log(classTotal + nb.Alpha*float64(numFeatures))

		nb.FeatureLogProb[c] = make([]float64, numFeatures)
		for j := 0; j < numFeatures; j++ {
			nb.FeatureLogProb[c][j] = math.Log(featureSum[c][j]+nb.Alpha) - denom
		}
	}
	nb.NumFeatures = numFeatures

	return nil
}

// PredictProba returns the per-class probabilities for a feature vector.
// Index 0 is the legitimate probability, index 1 the phishing probability.
// The log likelihoods are summed in sorted-index order so the same vector
// always scores bit-identically.
func (nb *NaiveBayes) PredictProba(vec Vector) [2]float64 {
	indices := make([]int, 0, len(vec))
	for idx := range vec {
		if idx >= 0 && idx < nb.NumFeatures {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	var jll [2]float64
	for c := 0; c < 2; c++ {
		jll[c] = nb.ClassLogPrior[c]
		for _, idx := range indices {
			jll[c] += vec[idx] * nb.FeatureLogProb[c][idx]
		}
	}

	// Stable softmax over the joint log likelihoods
	m := math.Max(jll[0], jll[1])
	e0 := math.Exp(jll[0] - m)
	e1 := math.Exp(jll[1] - m)
	sum := e0 + e1
	return [2]float64{e0 / sum, e1 / sum}
}

// Predict returns the most likely class for a feature vector
func (nb *NaiveBayes) Predict(vec Vector) int {
	probs := nb.PredictProba(vec)
	if probs[1] > probs[0] {
		return 1
	}
	return 0
}
