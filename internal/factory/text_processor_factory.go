package factory

import (
	"github.com/mikey/phishdash/internal/config"
	"github.com/mikey/phishdash/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory creates the text processor shared by both front ends
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger.Named("text"),
	}
}

// CreateTextProcessor creates a TextProcessor with the configured display limits
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	dashboard := f.cfg.GetDashboard()
	f.logger.Debug("Creating text processor", zap.Int("max_subject_runes", dashboard.MaxSubjectRunes))
	return utils.NewTextProcessor(f.logger).WithSubjectLimit(dashboard.MaxSubjectRunes)
}
