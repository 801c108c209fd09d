// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob of the service.
type Config struct {
	Port        int    `env:"APP_PORT" envDefault:"3000"`
	DatabaseDSN string `env:"DATABASE_DSN,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessExpires  time.Duration `env:"JWT_ACCESS_EXPIRES" envDefault:"15m"`
	RefreshExpires time.Duration `env:"JWT_REFRESH_EXPIRES" envDefault:"168h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	LoginFailWindow time.Duration `env:"LOGIN_FAIL_WINDOW" envDefault:"10m"`
	LoginMaxFails   int           `env:"LOGIN_MAX_FAILS" envDefault:"5"`
	LoginBlockFor   time.Duration `env:"LOGIN_BLOCK_FOR" envDefault:"15m"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
