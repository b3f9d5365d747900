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

// RelayConfigRepository loads and saves RelayConfig via viper-backed YAML.
type RelayConfigRepository struct{}

// NewRelayConfigRepository creates a new RelayConfigRepository instance.
func NewRelayConfigRepository() *RelayConfigRepository {
	return &RelayConfigRepository{}
}

// Load loads configuration from file.
func (r *RelayConfigRepository) Load(configPath string) (*model.RelayConfig, error) {
	cfg := model.NewRelayConfig()

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

	cfg.PublicAddr = v.GetString("public_addr")
	cfg.TunnelAddr = v.GetString("tunnel_addr")
	if v.IsSet("request_deadline_seconds") {
		cfg.RequestDeadlineSeconds = v.GetInt("request_deadline_seconds")
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
func (r *RelayConfigRepository) Save(cfg *model.RelayConfig, configPath string) error {
	if configPath == "" {
		configPath = cfg.DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.Set("public_addr", cfg.PublicAddr)
	v.Set("tunnel_addr", cfg.TunnelAddr)
	v.Set("request_deadline_seconds", cfg.RequestDeadlineSeconds)
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

var _ port.RelayConfigRepository = (*RelayConfigRepository)(nil)
