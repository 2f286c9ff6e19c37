package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishdash/internal/config"
	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/factory"
	"github.com/mikey/phishdash/internal/logging"
	"github.com/mikey/phishdash/internal/ports"
	"github.com/mikey/phishdash/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for
// the web dashboard
func BuildContainer(flags *Flags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *Flags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *Flags) (*config.Config, error) {
		return loadConfig(flags, config.FrontendWeb)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideDashboard(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideDashboard registers everything downstream of config and logger
func provideDashboard(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewAgentFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register agent client
	if err := container.Provide(func(f *factory.AgentFactory) (core.AgentClient, error) {
		return f.CreateAgentClient()
	}); err != nil {
		return err
	}

	// Register scan controller
	if err := container.Provide(func(f *factory.AgentFactory, client core.AgentClient) (*core.ScanController, error) {
		return f.CreateScanController(client)
	}); err != nil {
		return err
	}

	// Register front end
	if err := container.Provide(func(f *factory.FrontendFactory, logger *zap.Logger) (ports.Frontend, error) {
		frontend, err := f.CreateFrontend()
		if err != nil {
			return nil, err
		}
		logger.Debug("Front end created", zap.String("type", fmt.Sprintf("%T", frontend)))
		return frontend, nil
	}); err != nil {
		return err
	}

	return nil
}
