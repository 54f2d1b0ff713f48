package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/env"
)

// Config holds R2 object storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // R2 S3-compatible endpoint
	PublicBaseURL   string // public bucket URL, e.g. https://pub-xxxx.r2.dev
	Enabled         bool
}

// LoadConfig loads R2 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("R2_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("R2_REGION", "auto"),
		BucketName:      env.GetEnv("R2_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("R2_ENDPOINT_URL", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("R2_PUBLIC_BASE_URL", ""), "/"),
		Enabled:         env.GetEnv("R2_ENABLED", "false") == "true",
	}

	// Validate required fields if the R2 tier is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("R2_ACCESS_KEY_ID is required when R2 is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("R2_SECRET_ACCESS_KEY is required when R2 is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("R2_BUCKET_NAME is required when R2 is enabled")
		}
		if config.EndpointURL == "" {
			return nil, errors.New("R2_ENDPOINT_URL is required when R2 is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the R2 tier is configured
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates the standardized bucket key for a section PDF.
// Format: pdfs/{textbook_slug}/{resource_id}.pdf
func (c *Config) ObjectKey(textbookSlug, resourceID string) string {
	return fmt.Sprintf("pdfs/%s/%s.pdf", textbookSlug, resourceID)
}

// PublicURL returns the public download URL for an object key
func (c *Config) PublicURL(objectKey string) string {
	if c.PublicBaseURL == "" {
		return ""
	}
	return c.PublicBaseURL + "/" + objectKey
}

// GetBucketName returns the bucket name as configured
func (c *Config) GetBucketName() string {
	return c.BucketName
}
