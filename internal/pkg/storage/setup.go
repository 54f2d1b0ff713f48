package storage

import (
	"github.com/gofiber/fiber/v2/log"
)

var defaultClient *Client

// Setup initializes the global R2 client. When the R2 tier is disabled
// or unreachable the service runs in inline-only mode; uploads above the
// inline ceiling are then rejected instead of tiered out.
func Setup() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Errorf("[R2] Invalid configuration, running inline-only: %v", err)
		return
	}
	if !cfg.IsEnabled() {
		log.Info("[R2] Object storage tier disabled, running inline-only")
		return
	}

	client, err := NewClient(cfg)
	if err != nil {
		log.Errorf("[R2] Failed to initialize client, running inline-only: %v", err)
		return
	}
	defaultClient = client
}

// GetClient returns the global R2 client, or nil when the tier is
// disabled.
func GetClient() *Client {
	return defaultClient
}
