package jwtmw

import (
	"os"
	"time"
)

const (
	// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
	EnvKeyJWTSecret = "JWT_SECRET"
	// EnvKeyJWTExpiration is the environment variable holding the token lifetime (e.g., "24h").
	EnvKeyJWTExpiration = "JWT_EXPIRATION"

	defaultExpiration = 24 * time.Hour
)

// Config holds JWT signing settings.
type Config struct {
	Secret     string
	Expiration time.Duration
}

// LoadConfig loads JWT settings from environment variables.
// An unset or unparsable expiration falls back to 24h.
func LoadConfig() Config {
	cfg := Config{
		Secret:     os.Getenv(EnvKeyJWTSecret),
		Expiration: defaultExpiration,
	}
	if d, err := time.ParseDuration(os.Getenv(EnvKeyJWTExpiration)); err == nil && d > 0 {
		cfg.Expiration = d
	}
	return cfg
}
