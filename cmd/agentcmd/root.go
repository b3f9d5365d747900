// Package agentcmd is the Cobra command tree for the relaywarp Agent
// binary: the developer-side process that owns the local service, runs
// the request pipeline, and hosts the Rule REST surface.
package agentcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaywarp/relaywarp/internal/di"
)

var (
	// Container is the Agent's dependency injection container, built
	// fresh for each command invocation.
	Container *di.AgentContainer

	// ConfigPath is the path to the Agent's YAML configuration file.
	ConfigPath string

	// LogLevel overrides the configured logging level.
	LogLevel string

	// LogFormat overrides the configured logging format (text|json).
	LogFormat string
)

// RootCmd is the root command for the agent CLI. Running it with no
// subcommand is equivalent to "agent run".
var RootCmd = &cobra.Command{
	Use:   "agent",
	Short: "relaywarp Agent - developer-side tunnel endpoint",
	Long: `agent connects to a relaywarp Relay over a persistent duplex channel,
assembles inbound requests, runs them through the mock/chaos/routing
pipeline, and forwards whatever survives to a local service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context())
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Container = di.NewAgentContainer()
		if err := Container.Initialize(ConfigPath, LogFormat); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		if LogLevel != "" {
			Container.Logger.SetLevel(LogLevel)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Container != nil {
			Container.Close()
		}
	},
}

// Execute runs the agent CLI, exiting the process on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "path to configuration file (default: ~/.relaywarp/agent.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "override logging format (text, json)")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(rulesCmd)
}
