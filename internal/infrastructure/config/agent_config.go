package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/relaywarp/relaywarp/internal/domain/model"
	"github.com/relaywarp/relaywarp/internal/domain/port"
)

// AgentConfigRepository loads and saves AgentConfig via viper-backed YAML.
type AgentConfigRepository struct{}

// NewAgentConfigRepository creates a new AgentConfigRepository instance.
func NewAgentConfigRepository() *AgentConfigRepository {
	return &AgentConfigRepository{}
}

// Load loads configuration from file.
func (r *AgentConfigRepository) Load(configPath string) (*model.AgentConfig, error) {
	cfg := model.NewAgentConfig()

	if configPath == "" {
		configPath = cfg.DefaultConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if v.IsSet("agent_id") {
		cfg.AgentId = v.GetString("agent_id")
	}
	if v.IsSet("relay_url") {
		cfg.RelayURL = v.GetString("relay_url")
	}
	if v.IsSet("local_port") {
		cfg.LocalPort = v.GetInt("local_port")
	}
	if v.IsSet("admin_addr") {
		cfg.AdminAddr = v.GetString("admin_addr")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = model.LogFormat(v.GetString("log_format"))
	}
	cfg.LogFile = v.GetString("log_file")

	return cfg, nil
}

// Save saves configuration to file.
func (r *AgentConfigRepository) Save(cfg *model.AgentConfig, configPath string) error {
	if configPath == "" {
		configPath = cfg.DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.Set("agent_id", cfg.AgentId)
	v.Set("relay_url", cfg.RelayURL)
	v.Set("local_port", cfg.LocalPort)
	v.Set("admin_addr", cfg.AdminAddr)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", string(cfg.LogFormat))
	v.Set("log_file", cfg.LogFile)

	if err := v.WriteConfig(); err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return v.SafeWriteConfig()
		}
		return fmt.Errorf("error saving configuration: %w", err)
	}
	return nil
}

var _ port.AgentConfigRepository = (*AgentConfigRepository)(nil)
