package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/adapters/filter"
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/ports"
	"github.com/mikey/phish-detector/internal/textproc"
)

// FilterFactory creates email filter front ends based on configuration
type FilterFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	service   *core.DetectorService
	processor *textproc.Processor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.DetectorService,
	processor *textproc.Processor,
) *FilterFactory {
	return &FilterFactory{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		processor: processor,
	}
}

// CreateEmailFilter creates a filter front end based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")

	switch filterType {
	case "web":
		return filter.NewWebFilter(
			f.service,
			f.processor,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetInt64("server.max_upload_size"),
		)
	case "postfix":
		return filter.NewPostfixFilter(
			f.service,
			f.logger,
			f.cfg.GetString("postfix.listen_address"),
			f.cfg.GetBool("postfix.block_phishing"),
			f.cfg.GetString("postfix.headers.status"),
			f.cfg.GetString("postfix.headers.score"),
			f.cfg.GetString("postfix.headers.reason"),
			f.cfg.GetString("postfix.relay.address"),
			f.cfg.GetInt("postfix.relay.port"),
			f.cfg.GetBool("postfix.relay.enabled"),
			f.cfg.GetString("postfix.subject_prefix"),
			f.cfg.GetBool("postfix.modify_subject"),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
