package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/textproc"
)

// TextProcessorFactory creates text processors
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new text processor factory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{logger: logger}
}

// CreateTextProcessor creates a new text processor
func (f *TextProcessorFactory) CreateTextProcessor() *textproc.Processor {
	return textproc.NewProcessor(f.logger)
}
