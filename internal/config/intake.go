package config

import (
	"os"
	"path/filepath"
)

const EnvIntakeSpoolDir = "SELLFORGE_INTAKE_SPOOL_DIR"

// IntakeConfig holds upload spooling parameters. Uploads are written to the
// spool directory because the browser-driven pipeline steps need on-disk
// paths; nothing in the spool survives a process restart.
type IntakeConfig struct {
	SpoolDir string `toml:"spool_dir"`
}

// Finalize applies defaults and environment variable overrides.
func (c *IntakeConfig) Finalize() error {
	if c.SpoolDir == "" {
		c.SpoolDir = filepath.Join(os.TempDir(), "sellforge-intake")
	}
	if v := os.Getenv(EnvIntakeSpoolDir); v != "" {
		c.SpoolDir = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.SpoolDir != "" {
		c.SpoolDir = overlay.SpoolDir
	}
}
