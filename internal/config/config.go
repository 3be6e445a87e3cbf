// Package config loads runtime settings for the relay from the environment,
// applying defaults and sanitizing values that would leave the server unusable.
package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	defaultPort            = 8000
	defaultMaxMessageSize  = 64 * 1024
	defaultSendBufferSize  = 256
	defaultRateLimitBurst  = 20
	defaultRefillInterval  = time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultPongTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultTokenDuration   = 24 * time.Hour
)

// Config holds the server configuration settings including security controls.
type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8000"`

	// AllowedOrigins is a comma separated list; "*" allows every origin.
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`

	MaxMessageSize          int           `env:"MAX_MESSAGE_SIZE,default=65536"`
	SendBufferSize          int           `env:"SEND_BUFFER_SIZE,default=256"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=20"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	WriteTimeout            time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout             time.Duration `env:"PONG_TIMEOUT,default=60s"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=data/users"`
	BadgerInMemory bool   `env:"BADGER_IN_MEMORY,default=false"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RequireAuth       bool          `env:"REQUIRE_AUTH,default=false"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`
}

// Default returns a Config populated with default values for all settings.
// The JWT secret is a development placeholder and must be overridden in
// any deployment.
func Default() Config {
	return Config{
		Host:                    "0.0.0.0",
		Port:                    defaultPort,
		AllowedOrigins:          "http://localhost:5173",
		MaxMessageSize:          defaultMaxMessageSize,
		SendBufferSize:          defaultSendBufferSize,
		RateLimitBurst:          defaultRateLimitBurst,
		RateLimitRefillInterval: defaultRefillInterval,
		WriteTimeout:            defaultWriteTimeout,
		PongTimeout:             defaultPongTimeout,
		ShutdownTimeout:         defaultShutdownTimeout,
		BadgerFilepath:          "data/users",
		JWTSecret:               "development-only-secret",
		AuthTokenDuration:       defaultTokenDuration,
		LogLevel:                "INFO",
	}
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return Sanitize(cfg), nil
}

// Sanitize replaces non-positive or empty values with their defaults.
func Sanitize(cfg Config) Config {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.RateLimitRefillInterval <= 0 {
		cfg.RateLimitRefillInterval = defaultRefillInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultPongTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.AuthTokenDuration <= 0 {
		cfg.AuthTokenDuration = defaultTokenDuration
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	return cfg
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Address is the host:port the HTTP server listens on.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PingInterval is how often the write pump pings a peer. It must stay below
// PongTimeout so a healthy peer always answers before its read deadline.
func (c Config) PingInterval() time.Duration {
	return c.PongTimeout * 9 / 10
}
