package pipeline

import (
	"fmt"
	"os"
)

// Config holds pipeline collaborator parameters.
type Config struct {
	// OutputDir is where rendered sell sheets are written, one file per item.
	OutputDir string `toml:"output_dir"`
	// ContactLink is the licensing contact URL published with every record.
	ContactLink string `toml:"contact_link"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	OutputDir   string
	ContactLink string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.OutputDir != "" {
		c.OutputDir = overlay.OutputDir
	}
	if overlay.ContactLink != "" {
		c.ContactLink = overlay.ContactLink
	}
}

func (c *Config) loadDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = os.TempDir()
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.OutputDir != "" {
		if v := os.Getenv(env.OutputDir); v != "" {
			c.OutputDir = v
		}
	}
	if env.ContactLink != "" {
		if v := os.Getenv(env.ContactLink); v != "" {
			c.ContactLink = v
		}
	}
}

func (c *Config) validate() error {
	if c.ContactLink == "" {
		return fmt.Errorf("contact_link required")
	}
	return nil
}
