package config

import (
	"fmt"
	"net/url"
	"time"
)

// Supported dashboard front ends
const (
	FrontendWeb      = "web"
	FrontendTerminal = "terminal"
)

// AgentConfig represents the connection to the scanning agent
type AgentConfig struct {
	BaseURL   string
	Timeout   time.Duration
	StatusTTL time.Duration
}

// ServerConfig represents the configuration of the web dashboard
type ServerConfig struct {
	ListenAddress   string
	RefreshInterval time.Duration
}

// DashboardConfig represents front end selection and rendering options
type DashboardConfig struct {
	Frontend        string
	ExpandAll       bool
	JSONOutput      bool
	MaxSubjectRunes int
}

// LoggingConfig represents the logger configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GetAgent returns the agent configuration
func (c *Config) GetAgent() (AgentConfig, error) {
	timeout, err := c.GetDuration("agent.timeout")
	if err != nil {
		return AgentConfig{}, fmt.Errorf("invalid agent timeout: %w", err)
	}
	statusTTL, err := c.GetDuration("agent.status_ttl")
	if err != nil {
		return AgentConfig{}, fmt.Errorf("invalid agent status TTL: %w", err)
	}
	return AgentConfig{
		BaseURL:   c.GetString("agent.base_url"),
		Timeout:   timeout,
		StatusTTL: statusTTL,
	}, nil
}

// GetServer returns the web server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	refresh, err := c.GetDuration("server.refresh_interval")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid refresh interval: %w", err)
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		RefreshInterval: refresh,
	}, nil
}

// GetDashboard returns the dashboard configuration
func (c *Config) GetDashboard() DashboardConfig {
	return DashboardConfig{
		Frontend:        c.GetString("dashboard.frontend"),
		ExpandAll:       c.GetBool("dashboard.expand_all"),
		JSONOutput:      c.GetBool("dashboard.json_output"),
		MaxSubjectRunes: c.GetInt("dashboard.max_subject_runes"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}

// Validate checks the values the dashboard cannot run without
func (c *Config) Validate() error {
	agent, err := c.GetAgent()
	if err != nil {
		return err
	}
	u, err := url.Parse(agent.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid agent base URL %q: %w", agent.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("agent base URL must be an absolute http(s) URL, got %q", agent.BaseURL)
	}
	if agent.Timeout <= 0 {
		return fmt.Errorf("agent timeout must be positive, got %s", agent.Timeout)
	}

	if _, err := c.GetServer(); err != nil {
		return err
	}

	dashboard := c.GetDashboard()
	if dashboard.MaxSubjectRunes < 0 {
		return fmt.Errorf("max subject runes must not be negative, got %d", dashboard.MaxSubjectRunes)
	}

	switch frontend := dashboard.Frontend; frontend {
	case FrontendWeb, FrontendTerminal:
	default:
		return fmt.Errorf("unsupported frontend: %s", frontend)
	}

	return nil
}
