package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentProviderName = "SELLFORGE_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "SELLFORGE_AGENT_BASE_URL"
	EnvAgentToken        = "SELLFORGE_AGENT_TOKEN"
	EnvAgentDeployment   = "SELLFORGE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "SELLFORGE_AGENT_API_VERSION"
	EnvAgentAuthType     = "SELLFORGE_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "SELLFORGE_AGENT_MODEL_NAME"
)

// AgentConfig wraps the go-agents agent configuration used by the transform
// step, applying the service's three-phase finalize pattern: defaults from
// go-agents DefaultAgentConfig, environment variable overrides, validation.
type AgentConfig struct {
	gaconfig.AgentConfig
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	c.AgentConfig.Merge(&overlay.AgentConfig)
}

func (c *AgentConfig) loadDefaults() {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(&c.AgentConfig)
	c.AgentConfig = defaults
}

func (c *AgentConfig) loadEnv() {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func (c *AgentConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
