// Package di wires the Relay and Agent dependency graphs, mirroring the
// teacher's container: a plain struct built once at startup, holding
// every long-lived collaborator the cmd entrypoints need.
package di

import (
	"fmt"
	"time"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/infrastructure/config"
	"github.com/relaywarp/relaywarp/internal/infrastructure/logger"
	"github.com/relaywarp/relaywarp/internal/infrastructure/relayserver"
)

// RelayContainer holds the Relay process's dependency graph.
type RelayContainer struct {
	Logger           *logger.Logger
	ConfigRepository *config.RelayConfigRepository
	Config           *model.RelayConfig
	Server           *relayserver.Server
}

// NewRelayContainer returns an empty container; call Initialize before use.
func NewRelayContainer() *RelayContainer {
	return &RelayContainer{}
}

// Initialize loads configuration from configPath (the spec's default
// path when empty), sets up logging, and builds the Relay's server.
// logFormatOverride, when non-empty, takes precedence over the
// configured log format (the CLI's --log-format flag).
func (c *RelayContainer) Initialize(configPath string, logFormatOverride string) error {
	c.ConfigRepository = config.NewRelayConfigRepository()

	cfg, err := c.ConfigRepository.Load(configPath)
	if err != nil {
		return fmt.Errorf("di: load relay config: %w", err)
	}
	c.Config = cfg
	if logFormatOverride != "" {
		cfg.LogFormat = model.LogFormat(logFormatOverride)
	}

	c.Logger = logger.New(logWriter(), cfg.LogLevel, logger.Format(cfg.LogFormat))
	if cfg.LogFile != "" {
		fileLogger, err := logger.NewFile(cfg.LogFile, cfg.LogLevel, logger.Format(cfg.LogFormat))
		if err != nil {
			c.Logger.Error("failed to open log file: %v", err)
		} else {
			c.Logger = fileLogger
		}
	}

	c.Server = relayserver.New(c.Logger, time.Duration(cfg.RequestDeadlineSeconds)*time.Second)
	return nil
}

// Close releases container resources.
func (c *RelayContainer) Close() {
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
