package config

import (
	"fmt"
	"os"

	"github.com/jmaxwell/sellforge/pkg/formatting"
	"github.com/jmaxwell/sellforge/pkg/middleware"
	"github.com/jmaxwell/sellforge/pkg/openapi"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SELLFORGE_CORS_ENABLED",
	Origins:          "SELLFORGE_CORS_ORIGINS",
	AllowedMethods:   "SELLFORGE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SELLFORGE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SELLFORGE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SELLFORGE_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "SELLFORGE_OPENAPI_TITLE",
	Description: "SELLFORGE_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, CORS, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 200 * 1024 * 1024 // 200MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	// Batches of disclosure PDFs arrive in one multipart request.
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "200MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SELLFORGE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SELLFORGE_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
