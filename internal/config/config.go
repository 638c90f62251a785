// Package config loads and finalizes the service configuration: a base
// config.toml, an optional per-environment overlay, then defaults,
// environment variable overrides, and validation per sub-config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmaxwell/sellforge/internal/pipeline"
	"github.com/jmaxwell/sellforge/internal/session"
	"github.com/jmaxwell/sellforge/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSellforgeEnv             = "SELLFORGE_ENV"
	EnvSellforgeShutdownTimeout = "SELLFORGE_SHUTDOWN_TIMEOUT"
	EnvSellforgeVersion         = "SELLFORGE_VERSION"
)

var sessionEnv = &session.Env{
	ExtractionURL: "SELLFORGE_SESSION_EXTRACTION_URL",
	PublishingURL: "SELLFORGE_SESSION_PUBLISHING_URL",
	LoginWait:     "SELLFORGE_SESSION_LOGIN_WAIT",
	Headless:      "SELLFORGE_SESSION_HEADLESS",
	ExecPath:      "SELLFORGE_SESSION_EXEC_PATH",
}

var pipelineEnv = &pipeline.Env{
	OutputDir:   "SELLFORGE_PIPELINE_OUTPUT_DIR",
	ContactLink: "SELLFORGE_PIPELINE_CONTACT_LINK",
}

var storageEnv = &storage.Env{
	Enabled:          "SELLFORGE_STORAGE_ENABLED",
	ContainerName:    "SELLFORGE_STORAGE_CONTAINER_NAME",
	ConnectionString: "SELLFORGE_STORAGE_CONNECTION_STRING",
	MaxListSize:      "SELLFORGE_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the Sellforge service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Session         session.Config  `toml:"session"`
	Pipeline        pipeline.Config `toml:"pipeline"`
	Intake          IntakeConfig    `toml:"intake"`
	Storage         storage.Config  `toml:"storage"`
	Agent           AgentConfig     `toml:"agent"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SELLFORGE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSellforgeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Session.Merge(&overlay.Session)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Intake.Merge(&overlay.Intake)
	c.Storage.Merge(&overlay.Storage)
	c.Agent.Merge(&overlay.Agent)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Session.Finalize(sessionEnv); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Intake.Finalize(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Agent.Finalize(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSellforgeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSellforgeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSellforgeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
