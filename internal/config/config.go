package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabaseURL     = "mongodb://localhost/blog-app"
	DefaultTestDatabaseURL = "memory://"
	DefaultPort            = "8080"
)

type Config struct {
	Host               string
	Port               string
	DatabaseURL        string
	TestDatabaseURL    string
	CorsAllowedOrigins []string
	RateLimitPerMinute int
	LogLevel           string
	LogFormat          string
}

// Load reads the process environment, and a .env file when one exists.
// Unset keys fall back to defaults; nothing is required.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Host:               getEnv("HOST", ""),
		Port:               getEnv("PORT", DefaultPort),
		DatabaseURL:        getEnv("DATABASE_URL", getEnv("MONGODB_URI", DefaultDatabaseURL)),
		TestDatabaseURL:    getEnv("TEST_DATABASE_URL", DefaultTestDatabaseURL),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "auto"),
	}
}

// Addr is the listen address, e.g. ":8080".
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	parsed, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
