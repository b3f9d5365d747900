// Package di wires the Relay and Agent dependency graphs, mirroring the
// teacher's container: a plain struct built once at startup, holding
// every long-lived collaborator the cmd entrypoints need.
package di

import (
	"fmt"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/service/pipeline"
	"github.com/relaywarp/relaywarp/internal/infrastructure/agentclient"
	"github.com/relaywarp/relaywarp/internal/infrastructure/config"
	"github.com/relaywarp/relaywarp/internal/infrastructure/logger"
	"github.com/relaywarp/relaywarp/internal/restapi"
	"github.com/relaywarp/relaywarp/internal/rules"
)

// AgentContainer holds the Agent process's dependency graph: the Rule
// Store, the four-stage Pipeline built over it, the Transport Client,
// and the Rule REST surface that mutates the store at runtime.
type AgentContainer struct {
	Logger           *logger.Logger
	ConfigRepository *config.AgentConfigRepository
	Config           *model.AgentConfig

	MockStore    *rules.MockStore
	ChaosStore   *rules.ChaosStore
	RoutingStore *rules.RoutingStore
	RequestLog   *rules.RequestLog

	Pipeline     *pipeline.Pipeline
	Client       *agentclient.Client
	RulesHandler *restapi.Handler
}

// NewAgentContainer returns an empty container; call Initialize before use.
func NewAgentContainer() *AgentContainer {
	return &AgentContainer{}
}

// Initialize loads configuration from configPath (the spec's default
// path when empty), sets up logging, the Rule Store, the Pipeline, the
// Transport Client, and the Rule REST surface. logFormatOverride, when
// non-empty, takes precedence over the configured log format (the
// CLI's --log-format flag).
func (c *AgentContainer) Initialize(configPath string, logFormatOverride string) error {
	c.ConfigRepository = config.NewAgentConfigRepository()

	cfg, err := c.ConfigRepository.Load(configPath)
	if err != nil {
		return fmt.Errorf("di: load agent config: %w", err)
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

	c.MockStore = rules.NewMockStore()
	c.ChaosStore = rules.NewChaosStore()
	c.RoutingStore = rules.NewRoutingStore()
	c.RequestLog = rules.NewRequestLog(model.RequestLogCapacity)

	c.Pipeline = pipeline.New(
		pipeline.NewMockEngine(c.MockStore),
		pipeline.NewChaosEngine(c.ChaosStore),
		pipeline.NewRequestRouter(c.RoutingStore, cfg.LocalPort),
		pipeline.NewLocalForwarder(),
	)

	c.Client = agentclient.New(cfg.RelayURL, cfg.AgentId, c.Pipeline, c.RequestLog, c.Logger)
	c.RulesHandler = restapi.New(c.MockStore, c.ChaosStore, c.RoutingStore, c.RequestLog, c.Logger)

	return nil
}

// Close releases container resources.
func (c *AgentContainer) Close() {
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
