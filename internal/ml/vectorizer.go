package ml

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Vector is a sparse feature vector indexed by vocabulary position
type Vector map[int]float64

// VectorizerConfig holds the TF-IDF vectorizer parameters
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary size; the most frequent terms win,
	// ties broken lexicographically so training stays deterministic
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents than this
	MinDocFreq int
	// MaxDocRatio drops terms appearing in more than this fraction of documents
	MaxDocRatio float64
	// NgramMin and NgramMax bound the n-gram sizes generated from tokens
	NgramMin int
	NgramMax int
}

// DefaultVectorizerConfig returns the parameters the bundled model is trained with
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 5000,
		MinDocFreq:  1,
		MaxDocRatio: 0.95,
		NgramMin:    1,
		NgramMax:    2,
	}
}

// Vectorizer converts token streams into TF-IDF weighted feature vectors.
// Stop words are removed before n-gram generation, IDF weights are smoothed
// and every output vector is L2-normalized.
type Vectorizer struct {
	Config     VectorizerConfig
	Vocabulary map[string]int
	IDF        []float64
}

// NewVectorizer creates an unfitted vectorizer
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.NgramMin <= 0 {
		cfg.NgramMin = 1
	}
	if cfg.NgramMax < cfg.NgramMin {
		cfg.NgramMax = cfg.NgramMin
	}
	return &Vectorizer{Config: cfg}
}

// terms expands a token slice into the n-gram terms the vocabulary is built
// over. Stop words are dropped first, then n-grams are joined with a space.
func (v *Vectorizer) terms(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !IsStopWord(tok) {
			kept = append(kept, tok)
		}
	}

	var out []string
	for n := v.Config.NgramMin; n <= v.Config.NgramMax; n++ {
		for i := 0; i+n <= len(kept); i++ {
			out = append(out, strings.Join(kept[i:i+n], " "))
		}
	}
	return out
}

// Fit builds the vocabulary and IDF weights from training documents
func (v *Vectorizer) Fit(docs [][]string) error {
	if len(docs) == 0 {
		return fmt.Errorf("cannot fit vectorizer on an empty corpus")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range v.terms(doc) {
			termFreq[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	n := len(docs)
	maxDf := v.Config.MaxDocRatio * float64(n)
	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.Config.MinDocFreq {
			continue
		}
		if v.Config.MaxDocRatio > 0 && float64(df) > maxDf {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("vocabulary is empty after frequency pruning")
	}

	// Most frequent terms first; lexicographic tie-break keeps refits identical
	sort.Slice(candidates, func(i, j int) bool {
		if termFreq[candidates[i]] != termFreq[candidates[j]] {
			return termFreq[candidates[i]] > termFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if v.Config.MaxFeatures > 0 && len(candidates) > v.Config.MaxFeatures {
		candidates = candidates[:v.Config.MaxFeatures]
	}

	// Indices are assigned in sorted-term order
	sort.Strings(candidates)
	v.Vocabulary = make(map[string]int, len(candidates))
	v.IDF = make([]float64, len(candidates))
	for i, term := range candidates {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	return nil
}

// Transform maps a token slice to an L2-normalized TF-IDF vector.
// Terms outside the vocabulary are ignored. Weights are accumulated in
// sorted-index order so identical input always yields bit-identical output;
// map iteration order would perturb the norm in the last ULP.
func (v *Vectorizer) Transform(tokens []string) Vector {
	vec := make(Vector)
	for _, term := range v.terms(tokens) {
		if idx, ok := v.Vocabulary[term]; ok {
			vec[idx]++
		}
	}

	indices := make([]int, 0, len(vec))
	for idx := range vec {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var sumSq float64
	for _, idx := range indices {
		vec[idx] *= v.IDF[idx]
		sumSq += vec[idx] * vec[idx]
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for _, idx := range indices {
			vec[idx] /= norm
		}
	}
	return vec
}

// FitTransform fits the vocabulary and transforms the training documents
func (v *Vectorizer) FitTransform(docs [][]string) ([]Vector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	vectors := make([]Vector, len(docs))
	for i, doc := range docs {
		vectors[i] = v.Transform(doc)
	}
	return vectors, nil
}

// NumFeatures returns the fitted vocabulary size
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}
