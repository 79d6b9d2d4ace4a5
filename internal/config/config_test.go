package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "DATABASE_URL", "MONGODB_URI", "TEST_DATABASE_URL",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultTestDatabaseURL, cfg.TestDatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.CorsAllowedOrigins)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadDatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017/blog")

	assert.Equal(t, "mongodb://db:27017/blog", Load().DatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://localhost/blog")
	assert.Equal(t, "postgres://localhost/blog", Load().DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", " 9090 ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsAllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestLoadBadRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	assert.Equal(t, 0, Load().RateLimitPerMinute)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "-5")
	assert.Equal(t, 0, Load().RateLimitPerMinute)
}
