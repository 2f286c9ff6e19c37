package factory

import (
	"net/http"

	"github.com/mikey/phishdash/internal/adapters/agent"
	"github.com/mikey/phishdash/internal/config"
	"github.com/mikey/phishdash/internal/core"
	"go.uber.org/zap"
)

// AgentFactory creates agent clients
type AgentFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAgentFactory creates a new agent factory
func NewAgentFactory(cfg *config.Config, logger *zap.Logger) *AgentFactory {
	return &AgentFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAgentClient creates a new agent client based on the configuration
func (f *AgentFactory) CreateAgentClient() (core.AgentClient, error) {
	agentConfig, err := f.cfg.GetAgent()
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Creating agent client", zap.String("base_url", agentConfig.BaseURL))

	// Requests are bounded by the controller's per-scan context
	client, err := agent.NewHTTPClient(agentConfig.BaseURL, &http.Client{}, f.logger.Named("agent"))
	if err != nil {
		return nil, err
	}

	if agentConfig.StatusTTL <= 0 {
		return client, nil
	}
	return agent.NewStatusCache(client, agentConfig.StatusTTL, f.logger.Named("agent")), nil
}

// CreateScanController creates the scan controller around client
func (f *AgentFactory) CreateScanController(client core.AgentClient) (*core.ScanController, error) {
	agentConfig, err := f.cfg.GetAgent()
	if err != nil {
		return nil, err
	}
	return core.NewScanController(client, f.logger.Named("controller"), agentConfig.Timeout), nil
}
