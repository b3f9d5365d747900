package port

import "github.com/relaywarp/relaywarp/internal/domain/model"

// RelayConfigRepository defines operations that can be performed on the
// Relay's configuration.
type RelayConfigRepository interface {
	// Load loads configuration from path, or the default location if
	// path is empty. A missing file yields defaults, not an error.
	Load(path string) (*model.RelayConfig, error)

	// Save writes config to path, or the default location if path is empty.
	Save(config *model.RelayConfig, path string) error
}

// AgentConfigRepository defines operations that can be performed on the
// Agent's configuration.
type AgentConfigRepository interface {
	Load(path string) (*model.AgentConfig, error)
	Save(config *model.AgentConfig, path string) error
}
