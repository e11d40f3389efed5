// Package config loads the proxy configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig
	Cache   CacheConfig
	Session SessionConfig
	Server  ServerConfig
	Log     LogConfig
}

// APIConfig describes the upstream REST API.
type APIConfig struct {
	BaseURL   string `env:"MODIO_API_URL" envDefault:"https://api.mod.io/v1"`
	APIKey    string `env:"MODIO_API_KEY"`
	UserAgent string `env:"USER_AGENT" envDefault:"modio-client/0.1.0"`
}

// CacheConfig sizes the response cache.
type CacheConfig struct {
	MaxBytes      uint64        `env:"CACHE_MAX_BYTES" envDefault:"1048576"`
	EntryLifetime time.Duration `env:"CACHE_ENTRY_LIFETIME" envDefault:"120s"`
}

// SessionConfig selects where the session token is shared. An empty
// RedisURL keeps the session in process memory.
type SessionConfig struct {
	RedisURL string        `env:"REDIS_URL"`
	Key      string        `env:"SESSION_KEY" envDefault:"modio:session:token"`
	TTL      time.Duration `env:"SESSION_TTL" envDefault:"0s"`
}

// ServerConfig configures the HTTP proxy.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("MODIO_API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.APIKey == "" {
		return fmt.Errorf("MODIO_API_KEY is required")
	}
	if c.Cache.MaxBytes == 0 {
		return fmt.Errorf("CACHE_MAX_BYTES must be positive")
	}
	if c.Cache.EntryLifetime < time.Second {
		return fmt.Errorf("CACHE_ENTRY_LIFETIME must be at least 1s, got %s", c.Cache.EntryLifetime)
	}
	return nil
}

// HasRedis returns true if a shared session store is configured.
func (c *Config) HasRedis() bool {
	return c.Session.RedisURL != ""
}
