// Package twelvedata provides a client for the Twelve Data market data API.
package twelvedata

import (
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is used when TWELVE_DATA_BASE_URL is not set.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
	RateLimit        int           // Requests per minute allowed by the plan
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:          10 * time.Second,
		RateLimit:        8,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v, err := strconv.Atoi(os.Getenv("TWELVE_DATA_RATE_LIMIT")); err == nil && v > 0 {
		cfg.RateLimit = v
	}
	return cfg
}
