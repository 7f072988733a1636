// Package config loads the TOML configuration for the duel server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Identity verification service
	Auth AuthConfig `toml:"auth"`

	// Match finalization service
	Players PlayersConfig `toml:"players"`

	// Match rules
	Game GameConfig `toml:"game"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int     `toml:"port"`            // Listen port
	RequestTimeout string  `toml:"request_timeout"` // Per-request timeout (e.g., "30s")
	RateLimit      float64 `toml:"rate_limit"`      // Requests per second (0 disables)
	RateBurst      int     `toml:"rate_burst"`      // Burst allowance
}

// DatabaseConfig contains sqlite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the sqlite file
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on startup
}

// AuthConfig contains identity verifier settings.
type AuthConfig struct {
	BaseURL     string `toml:"base_url"`     // Verifier base URL
	Timeout     string `toml:"timeout"`      // Per-attempt timeout (e.g., "3s")
	MaxAttempts int    `toml:"max_attempts"` // Verification attempts
	BaseDelay   string `toml:"base_delay"`   // First retry delay (e.g., "2s")
}

// PlayersConfig contains finalization service settings.
type PlayersConfig struct {
	BaseURL     string `toml:"base_url"`     // Players service base URL
	APIKey      string `toml:"api_key"`      // Optional X-API-Key value
	Timeout     string `toml:"timeout"`      // Per-attempt timeout
	MaxAttempts int    `toml:"max_attempts"` // Delivery attempts
	BaseDelay   string `toml:"base_delay"`   // First retry delay
	MaxDelay    string `toml:"max_delay"`    // Retry delay cap
}

// GameConfig contains match rule settings.
type GameConfig struct {
	HandSize  int `toml:"hand_size"`  // Cards dealt to each player
	MaxRounds int `toml:"max_rounds"` // Rounds played per match
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: "30s",
			RateLimit:      50,
			RateBurst:      100,
		},
		Database: DatabaseConfig{
			Path:        "cardduel.db",
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			BaseURL:     "http://localhost:8001",
			Timeout:     "3s",
			MaxAttempts: 3,
			BaseDelay:   "2s",
		},
		Players: PlayersConfig{
			BaseURL:     "http://localhost:8002",
			Timeout:     "5s",
			MaxAttempts: 3,
			BaseDelay:   "2s",
			MaxDelay:    "10s",
		},
		Game: GameConfig{
			HandSize:  5,
			MaxRounds: 5,
		},
	}
}

// Load loads the configuration from path. Returns default config if the
// file doesn't exist.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	for name, raw := range map[string]string{
		"server request timeout": c.Server.RequestTimeout,
		"auth timeout":           c.Auth.Timeout,
		"auth base delay":        c.Auth.BaseDelay,
		"players timeout":        c.Players.Timeout,
		"players base delay":     c.Players.BaseDelay,
		"players max delay":      c.Players.MaxDelay,
	} {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("hand size must be positive: %d", c.Game.HandSize)
	}
	if c.Game.MaxRounds < 1 {
		return fmt.Errorf("max rounds must be positive: %d", c.Game.MaxRounds)
	}
	if c.Game.MaxRounds > c.Game.HandSize {
		return fmt.Errorf("max rounds %d exceeds hand size %d", c.Game.MaxRounds, c.Game.HandSize)
	}
	return nil
}

// GetRequestTimeout returns the server request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

func mustDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

// AuthTimeouts returns the auth client timing knobs as durations.
// Validate must have been called first.
func (c *Config) AuthTimeouts() (timeout, baseDelay time.Duration) {
	return mustDuration(c.Auth.Timeout), mustDuration(c.Auth.BaseDelay)
}

// PlayersTimeouts returns the players client timing knobs as durations.
// Validate must have been called first.
func (c *Config) PlayersTimeouts() (timeout, baseDelay, maxDelay time.Duration) {
	return mustDuration(c.Players.Timeout), mustDuration(c.Players.BaseDelay), mustDuration(c.Players.MaxDelay)
}
