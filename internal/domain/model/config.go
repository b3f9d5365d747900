package model

import (
	"os"
	"path/filepath"
)

// LogFormat selects the logger's output handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// RelayConfig is the configuration structure for the relaywarp Relay.
type RelayConfig struct {
	// PublicAddr is the address the public HTTP front listens on.
	PublicAddr string
	// TunnelAddr is the address the agent duplex-channel upgrade endpoint listens on.
	TunnelAddr string
	// RequestDeadlineSeconds bounds how long a pending request waits for the Agent.
	RequestDeadlineSeconds int
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string
	// LogFormat selects text (colorized) or json log output.
	LogFormat LogFormat
	// LogFile is the path to a log file (empty for stdout).
	LogFile string
}

// NewRelayConfig returns a RelayConfig with the spec's default values.
func NewRelayConfig() *RelayConfig {
	return &RelayConfig{
		PublicAddr:             ":8080",
		TunnelAddr:             ":8081",
		RequestDeadlineSeconds: 30,
		LogLevel:               "info",
		LogFormat:              LogFormatText,
	}
}

// DefaultConfigPath returns ~/.relaywarp/relay.yaml (or /etc/relaywarp for root).
func (c *RelayConfig) DefaultConfigPath() string {
	return defaultConfigDir("relay.yaml")
}

// AgentConfig is the configuration structure for the relaywarp Agent.
type AgentConfig struct {
	// AgentId is the short label this Agent registers under.
	AgentId string
	// RelayURL is the base ws(s):// URL of the Relay's tunnel endpoint.
	RelayURL string
	// LocalPort is the default local service port used when no routing rule matches.
	LocalPort int
	// AdminAddr is the address the Rule REST surface listens on.
	AdminAddr string
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string
	// LogFormat selects text (colorized) or json log output.
	LogFormat LogFormat
	// LogFile is the path to a log file (empty for stdout).
	LogFile string
}

// NewAgentConfig returns an AgentConfig with the spec's default values.
func NewAgentConfig() *AgentConfig {
	return &AgentConfig{
		RelayURL:  "ws://localhost:8081",
		LocalPort: 3000,
		AdminAddr: "127.0.0.1:8088",
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}
}

// DefaultConfigPath returns ~/.relaywarp/agent.yaml (or /etc/relaywarp for root).
func (c *AgentConfig) DefaultConfigPath() string {
	return defaultConfigDir("agent.yaml")
}

func defaultConfigDir(file string) string {
	configDir := "/etc/relaywarp"
	if os.Getuid() != 0 {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(homeDir, ".relaywarp")
		}
	}
	return filepath.Join(configDir, file)
}
