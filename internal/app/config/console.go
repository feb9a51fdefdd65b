// Package config loads the terminal console configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tradeview/internal/feature/watchlist/usecase"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Console is the top-level configuration of cmd/console.
type Console struct {
	API     API     `yaml:"api"`
	Auth    Auth    `yaml:"auth"`
	Storage Storage `yaml:"storage"`
	Panel   Panel   `yaml:"panel"`
	Market  Market  `yaml:"market"`
	Logging Logging `yaml:"logging"`
}

// API is the tradeview backend the console talks to.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Auth mints a token locally when API.Token is empty and JWTSecret is set.
type Auth struct {
	JWTSecret string `yaml:"jwt_secret"`
	UserID    uint   `yaml:"user_id"`
	Email     string `yaml:"email"`
}

// Storage selects where the watchlist is kept. An empty SQLitePath keeps it in memory.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Panel configures the watchlist panel.
type Panel struct {
	Mode           string        `yaml:"mode"`
	Open           bool          `yaml:"open"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

// Market configures live quotes. Quotes are disabled when TwelveDataAPIKey is empty.
type Market struct {
	TwelveDataAPIKey string        `yaml:"twelvedata_api_key"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	RateLimit        int           `yaml:"rate_limit"`
}

// Logging configures the console logger. The terminal is owned by the UI,
// so logs always go to File.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Console {
	return &Console{
		API: API{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Auth: Auth{UserID: 1},
		Panel: Panel{
			Mode:           usecase.ModeInline.String(),
			Open:           true,
			SearchDebounce: usecase.DefaultSearchDebounce,
		},
		Market: Market{
			PollInterval: 5 * time.Second,
			RateLimit:    8,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   fmt.Sprintf("%s/tradeview-console-%s.log", os.TempDir(), time.Now().Format("2006-01-02")),
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML file at path over the defaults and then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Console, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the console cannot start with.
func (c *Console) Validate() error {
	if _, err := usecase.ParseMode(c.Panel.Mode); err != nil {
		return err
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	return nil
}

// PanelMode returns the parsed panel mode.
func (c *Console) PanelMode() usecase.Mode {
	m, _ := usecase.ParseMode(c.Panel.Mode)
	return m
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Console) {
	if v := os.Getenv("TRADEVIEW_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if v := os.Getenv("TRADEVIEW_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if v := os.Getenv("TRADEVIEW_USER_ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			cfg.Auth.UserID = uint(id)
		}
	}

	if v := os.Getenv("TRADEVIEW_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("TRADEVIEW_PANEL_MODE"); v != "" {
		cfg.Panel.Mode = v
	}

	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		cfg.Market.TwelveDataAPIKey = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
