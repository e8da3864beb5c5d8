package config

// ClassifierConfig selects and locates the classification backend
type ClassifierConfig struct {
	Backend  string
	ModelDir string
}

// TrainingConfig holds training run parameters
type TrainingConfig struct {
	DataPath    string
	TestRatio   float64
	Seed        int64
	Alpha       float64
	MaxFeatures int
}

// OpenAIConfig represents the configuration for the optional OpenAI backend
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Backend:  c.GetString("classifier.backend"),
		ModelDir: c.GetString("classifier.model_dir"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		DataPath:    c.GetString("training.data_path"),
		TestRatio:   c.GetFloat64("training.test_ratio"),
		Seed:        c.GetInt64("training.seed"),
		Alpha:       c.GetFloat64("training.alpha"),
		MaxFeatures: c.GetInt("training.max_features"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}
