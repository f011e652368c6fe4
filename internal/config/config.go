package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Simulation limits
	DefaultSimulations int `json:"default_simulations"`
	MaxSimulations     int `json:"max_simulations"`
	MaxProjectionYears int `json:"max_projection_years"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         ":8080",
		Debug:              false,
		DefaultSimulations: 10000,
		MaxSimulations:     100000,
		MaxProjectionYears: 50,
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("UNDERWRITE_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("UNDERWRITE_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}

	cfg.DefaultSimulations = envInt("UNDERWRITE_DEFAULT_SIMULATIONS", cfg.DefaultSimulations)
	cfg.MaxSimulations = envInt("UNDERWRITE_MAX_SIMULATIONS", cfg.MaxSimulations)
	cfg.MaxProjectionYears = envInt("UNDERWRITE_MAX_PROJECTION_YEARS", cfg.MaxProjectionYears)

	return cfg
}

// envInt reads a positive integer from the environment, keeping the fallback
// on absent or invalid values.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}
