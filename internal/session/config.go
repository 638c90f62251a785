package session

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds browser session parameters.
type Config struct {
	ExtractionURL string `toml:"extraction_url"`
	PublishingURL string `toml:"publishing_url"`
	LoginWait     string `toml:"login_wait"`
	Headless      bool   `toml:"headless"`
	ExecPath      string `toml:"exec_path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ExtractionURL string
	PublishingURL string
	LoginWait     string
	Headless      string
	ExecPath      string
}

// LoginWaitDuration returns LoginWait as a time.Duration.
func (c *Config) LoginWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.LoginWait)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Headless always applies.
func (c *Config) Merge(overlay *Config) {
	c.Headless = overlay.Headless
	if overlay.ExtractionURL != "" {
		c.ExtractionURL = overlay.ExtractionURL
	}
	if overlay.PublishingURL != "" {
		c.PublishingURL = overlay.PublishingURL
	}
	if overlay.LoginWait != "" {
		c.LoginWait = overlay.LoginWait
	}
	if overlay.ExecPath != "" {
		c.ExecPath = overlay.ExecPath
	}
}

func (c *Config) loadDefaults() {
	if c.LoginWait == "" {
		c.LoginWait = "60s"
	}
	// Headless defaults to false: the operator must see the browser to log in.
}

func (c *Config) loadEnv(env *Env) {
	if env.ExtractionURL != "" {
		if v := os.Getenv(env.ExtractionURL); v != "" {
			c.ExtractionURL = v
		}
	}
	if env.PublishingURL != "" {
		if v := os.Getenv(env.PublishingURL); v != "" {
			c.PublishingURL = v
		}
	}
	if env.LoginWait != "" {
		if v := os.Getenv(env.LoginWait); v != "" {
			c.LoginWait = v
		}
	}
	if env.Headless != "" {
		if v := os.Getenv(env.Headless); v != "" {
			if headless, err := strconv.ParseBool(v); err == nil {
				c.Headless = headless
			}
		}
	}
	if env.ExecPath != "" {
		if v := os.Getenv(env.ExecPath); v != "" {
			c.ExecPath = v
		}
	}
}

func (c *Config) validate() error {
	if c.ExtractionURL == "" {
		return fmt.Errorf("extraction_url required")
	}
	if c.PublishingURL == "" {
		return fmt.Errorf("publishing_url required")
	}
	if _, err := time.ParseDuration(c.LoginWait); err != nil {
		return fmt.Errorf("invalid login_wait: %w", err)
	}
	return nil
}
