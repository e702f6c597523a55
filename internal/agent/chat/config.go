// internal/agent/chat/config.go
package chat

import (
	"time"

	"storefront/internal/common/config"
)

type Config struct {
	AppID   string
	APIKey  string
	AgentID string
	BaseURL string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}

// FromAgentConfig maps the loaded agent section onto the client settings.
func FromAgentConfig(a config.AgentConfig) *Config {
	return &Config{
		AppID:   a.AppID,
		APIKey:  a.APIKey,
		AgentID: a.AgentID,
		BaseURL: a.BaseURL,
		Timeout: config.GetDuration(a.Timeout),
	}
}

// Validate reports the blank settings as CONFIGURATION_MISSING.
func (c *Config) Validate() error {
	return config.AgentConfig{AppID: c.AppID, APIKey: c.APIKey, AgentID: c.AgentID}.Validate()
}
