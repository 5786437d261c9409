package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	APIBaseURL   string
	APITimeout   time.Duration
	LogLevel     string
	LogFormat    string
	DataDir      string
	ResultStore  string
	RedisURL     string
	ResultTTL    time.Duration
	TickInterval time.Duration
	// FreeCustomPapersPerDay is the local quota applied before asking the
	// backend to generate a paper for a free user.
	FreeCustomPapersPerDay int

	MockPort      string
	MockJWTSecret string
	MockGinMode   string
	// AllowedOrigins controls CORS on the mock backend.
	// Empty slice means all origins are permitted.
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error; .env is optional

	return &Config{
		APIBaseURL:             strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3001"), "/"),
		APITimeout:             time.Duration(getEnvInt("API_TIMEOUT_MS", 15000)) * time.Millisecond,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "pretty"),
		DataDir:                getEnv("DATA_DIR", defaultDataDir()),
		ResultStore:            getEnv("RESULT_STORE", "local"),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ResultTTL:              time.Duration(getEnvInt("RESULT_TTL_MINUTES", 60)) * time.Minute,
		TickInterval:           time.Duration(getEnvInt("TICK_INTERVAL_MS", 500)) * time.Millisecond,
		FreeCustomPapersPerDay: getEnvInt("FREE_CUSTOM_PAPERS_PER_DAY", 2),
		MockPort:               getEnv("MOCK_PORT", "3001"),
		MockJWTSecret:          getEnv("MOCK_JWT_SECRET", "change-this-to-a-secure-random-string"),
		MockGinMode:            getEnv("GIN_MODE", "debug"),
		AllowedOrigins:         parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// StorePath is the SQLite file backing local persistence.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "qprep.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qprep"
	}
	return filepath.Join(home, ".qprep")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
