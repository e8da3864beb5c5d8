package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/adapters/localmodel"
	"github.com/mikey/phish-detector/internal/adapters/openai"
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/textproc"
)

// ClassifierFactory creates classification backends based on configuration
type ClassifierFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	processor *textproc.Processor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, processor *textproc.Processor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:       cfg,
		logger:    logger,
		processor: processor,
	}
}

// CreateClassifier creates a classification backend based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	classifierCfg := f.cfg.GetClassifier()

	switch classifierCfg.Backend {
	case "local":
		return localmodel.Load(classifierCfg.ModelDir, f.processor, f.logger)
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key")
		}
		return openai.NewClassifier(
			openaiCfg.APIKey,
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			openaiCfg.MaxBodySize,
			f.processor,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported classifier backend: %s", classifierCfg.Backend)
	}
}
