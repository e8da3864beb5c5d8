package ml

// Pipeline chains the TF-IDF vectorizer and the Naive Bayes classifier,
// mirroring the two persisted model artifacts.
type Pipeline struct {
	Vectorizer *Vectorizer
	Classifier *NaiveBayes
}

// NewPipeline creates an unfitted pipeline
func NewPipeline(cfg VectorizerConfig, alpha float64) *Pipeline {
	return &Pipeline{
		Vectorizer: NewVectorizer(cfg),
		Classifier: NewNaiveBayes(alpha),
	}
}

// Fit trains the vectorizer and classifier on preprocessed token documents
func (p *Pipeline) Fit(docs [][]string, labels []int) error {
	vectors, err := p.Vectorizer.FitTransform(docs)
	if err != nil {
		return err
	}
	return p.Classifier.Fit(vectors, labels, p.Vectorizer.NumFeatures())
}

// PredictProba returns [legitimate, phishing] probabilities for a token document
func (p *Pipeline) PredictProba(tokens []string) [2]float64 {
	return p.Classifier.PredictProba(p.Vectorizer.Transform(tokens))
}

// Predict returns the most likely label (0 legitimate, 1 phishing)
func (p *Pipeline) Predict(tokens []string) int {
	return p.Classifier.Predict(p.Vectorizer.Transform(tokens))
}
