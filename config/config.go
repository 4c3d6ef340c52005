package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the sqlite catalog store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig holds matcher and ingestion configuration
type MatchingConfig struct {
	EnableDebugLogging bool          `mapstructure:"enable_debug_logging"`
	SnapshotTTL        time.Duration `mapstructure:"snapshot_ttl"`
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	PerIP float64 `mapstructure:"per_ip"`
	Burst int     `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/plantarium/")

	// Environment variable settings
	v.SetEnvPrefix("PLANTARIUM")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from a .env file in the working directory.
// A missing file is not an error; deployments commonly rely on real
// environment variables instead.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.path", "data/catalog.db")

	// Matching defaults
	v.SetDefault("matching.enable_debug_logging", false)
	v.SetDefault("matching.snapshot_ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 50.0)
	v.SetDefault("ratelimit.burst", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set PLANTARIUM_DATABASE_PATH)")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("rate limit per_ip must be positive, got: %v", config.RateLimit.PerIP)
	}

	if config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got: %d", config.RateLimit.Burst)
	}

	if config.Matching.SnapshotTTL <= 0 {
		return fmt.Errorf("snapshot TTL must be positive, got: %v", config.Matching.SnapshotTTL)
	}

	return nil
}
