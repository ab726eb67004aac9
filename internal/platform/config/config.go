package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	errInvalidPort           = errors.New("config: invalid PORT number")
	errConcurrencyOutOfRange = errors.New("config: PROBE_CONCURRENCY must be 1-100")
	errKeywordLimitTooSmall  = errors.New("config: KEYWORD_LIMIT must be >= 1")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port             string
	LogLevel         string
	ProbeConcurrency int
	KeywordLimit     int
	UserAgent        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "ERROR"),
		ProbeConcurrency: getEnvAsInt("PROBE_CONCURRENCY", 10),
		KeywordLimit:     getEnvAsInt("KEYWORD_LIMIT", 20),
		UserAgent:        getEnv("USER_AGENT", "SeoScopeBot/1.0"),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.ProbeConcurrency < 1 || c.ProbeConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errConcurrencyOutOfRange, c.ProbeConcurrency)
	}

	if c.KeywordLimit < 1 {
		return fmt.Errorf("%w: got %d", errKeywordLimitTooSmall, c.KeywordLimit)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
