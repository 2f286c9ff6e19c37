package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishdash/internal/config"
	"github.com/mikey/phishdash/internal/logging"
)

// Flags contains the command line flags shared by all commands
type Flags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
	AgentURL   string

	// serve
	ListenAddress string

	// scan
	Expand bool
	JSON   bool
}

// BuildCLIContainer creates and configures a dependency injection container
// for one-shot terminal commands
func BuildCLIContainer(flags *Flags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *Flags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *Flags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *Flags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadConfig(flags, config.FrontendTerminal)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideDashboard(container); err != nil {
		return nil, err
	}

	return container, nil
}

// loadConfig reads the configuration, applies flag overrides and validates the result
func loadConfig(flags *Flags, frontend string) (*config.Config, error) {
	cfg, err := config.NewWithFile(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, flags, frontend)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides sets the values given on the command line
func applyOverrides(cfg *config.Config, flags *Flags, frontend string) {
	v := cfg.GetViper()

	v.Set("dashboard.frontend", frontend)
	if flags.AgentURL != "" {
		v.Set("agent.base_url", flags.AgentURL)
	}
	if flags.ListenAddress != "" {
		v.Set("server.listen_address", flags.ListenAddress)
	}
	if flags.Verbose {
		v.Set("logging.level", "debug")
	}
	if flags.JSONLog {
		v.Set("logging.format", "json")
	}
	if flags.Expand {
		v.Set("dashboard.expand_all", true)
	}
	if flags.JSON {
		v.Set("dashboard.json_output", true)
	}
}
