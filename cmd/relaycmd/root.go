// Package relaycmd is the Cobra command tree for the relaywarp Relay
// binary: the public-side process that accepts public HTTP and forwards
// it over the duplex channel to a connected Agent.
package relaycmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaywarp/relaywarp/internal/di"
)

var (
	// Container is the Relay's dependency injection container, built
	// fresh for each command invocation.
	Container *di.RelayContainer

	// ConfigPath is the path to the Relay's YAML configuration file.
	ConfigPath string

	// LogLevel overrides the configured logging level.
	LogLevel string

	// LogFormat overrides the configured logging format (text|json).
	LogFormat string
)

// RootCmd is the root command for the relay CLI.
var RootCmd = &cobra.Command{
	Use:   "relay",
	Short: "relaywarp Relay - public-side reverse tunnel front",
	Long: `relay accepts inbound public HTTP requests and forwards each one,
over a persistent duplex channel, to a connected Agent process that
re-issues the request against a local service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Container = di.NewRelayContainer()
		if err := Container.Initialize(ConfigPath, LogFormat); err != nil {
			return fmt.Errorf("relay: %w", err)
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

// Execute runs the relay CLI, exiting the process on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "path to configuration file (default: ~/.relaywarp/relay.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "override logging format (text, json)")

}
