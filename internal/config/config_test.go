package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFillsDefaults(t *testing.T) {
	req := require.New(t)

	cfg := Sanitize(Config{
		Port:                    -1,
		MaxMessageSize:          0,
		SendBufferSize:          -5,
		RateLimitBurst:          0,
		RateLimitRefillInterval: -time.Second,
	})

	def := Default()
	req.Equal(def.Port, cfg.Port)
	req.Equal(def.MaxMessageSize, cfg.MaxMessageSize)
	req.Equal(def.SendBufferSize, cfg.SendBufferSize)
	req.Equal(def.RateLimitBurst, cfg.RateLimitBurst)
	req.Equal(def.RateLimitRefillInterval, cfg.RateLimitRefillInterval)
	req.Equal(def.WriteTimeout, cfg.WriteTimeout)
	req.Equal(def.PongTimeout, cfg.PongTimeout)
	req.Equal(def.AuthTokenDuration, cfg.AuthTokenDuration)
	req.Equal("INFO", cfg.LogLevel)
}

func TestSanitizeKeepsValidValues(t *testing.T) {
	req := require.New(t)

	cfg := Default()
	cfg.Port = 9090
	cfg.MaxMessageSize = 1024
	cfg.RateLimitBurst = 3

	sanitized := Sanitize(cfg)
	req.Equal(9090, sanitized.Port)
	req.Equal(1024, sanitized.MaxMessageSize)
	req.Equal(3, sanitized.RateLimitBurst)
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"single", "http://localhost:5173", []string{"http://localhost:5173"}},
		{"trimmed list", " http://a.test , https://b.test ", []string{"http://a.test", "https://b.test"}},
		{"empty entries dropped", "http://a.test,,", []string{"http://a.test"}},
		{"wildcard", "*", []string{"*"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{AllowedOrigins: tt.raw}
			require.Equal(t, tt.expected, cfg.Origins())
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9001")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("REQUIRE_AUTH", "true")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("test-secret", cfg.JWTSecret)
	req.Equal(9001, cfg.Port)
	req.Equal([]string{"http://localhost:3000"}, cfg.Origins())
	req.Equal(2*time.Second, cfg.RateLimitRefillInterval)
	req.True(cfg.RequireAuth)
	req.Equal("0.0.0.0:9001", cfg.Address())
}

func TestPingIntervalBelowPongTimeout(t *testing.T) {
	cfg := Default()
	require.Less(t, cfg.PingInterval(), cfg.PongTimeout)
}
