// Package config provides server configuration from environment variables
// and offline plan files in YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DBPath      string
	RedisAddr   string // empty disables the result cache
	LogLevel    string
	Pretty      bool
	CacheTTL    time.Duration
	Simulations int // default Monte Carlo trial count for API requests
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		DBPath:      getEnv("DB_PATH", "data/retirement.db"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Pretty:      getEnvBool("LOG_PRETTY", true),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		Simulations: getEnvInt("SIMULATIONS", 5000),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Simulations <= 0 {
		return nil, fmt.Errorf("SIMULATIONS must be positive, got %d", cfg.Simulations)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
