package factory

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/phishdash/internal/adapters/terminal"
	"github.com/mikey/phishdash/internal/adapters/web"
	"github.com/mikey/phishdash/internal/config"
	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/ports"
	"github.com/mikey/phishdash/internal/utils"
	"go.uber.org/zap"
)

// FrontendFactory creates dashboard front ends based on configuration
type FrontendFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	controller    *core.ScanController
	agent         core.AgentClient
	textProcessor *utils.TextProcessor
	out           io.Writer
}

// NewFrontendFactory creates a new front end factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	controller *core.ScanController,
	agent core.AgentClient,
	textProcessor *utils.TextProcessor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:           cfg,
		logger:        logger,
		controller:    controller,
		agent:         agent,
		textProcessor: textProcessor,
		out:           os.Stdout,
	}
}

// WithOutput sets where the terminal front end writes
func (f *FrontendFactory) WithOutput(w io.Writer) *FrontendFactory {
	f.out = w
	return f
}

// CreateFrontend creates a front end based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	dashboard := f.cfg.GetDashboard()

	switch dashboard.Frontend {
	case config.FrontendWeb:
		server, err := f.cfg.GetServer()
		if err != nil {
			return nil, err
		}
		srv, err := web.NewServer(
			f.controller,
			f.agent,
			f.textProcessor,
			f.logger.Named("web"),
			server.ListenAddress,
			server.RefreshInterval,
		)
		if err != nil {
			return nil, err
		}
		return srv, nil
	case config.FrontendTerminal:
		return terminal.NewFrontend(
			f.controller,
			f.textProcessor,
			f.logger.Named("terminal"),
			f.out,
			dashboard.ExpandAll,
			dashboard.JSONOutput,
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", dashboard.Frontend)
	}
}
