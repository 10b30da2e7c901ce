package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Auth       AuthConfig
	Services   ServicesConfig
	Quota      QuotaConfig
	WorkerPool WorkerPoolConfig
	Server     ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret string
}

// ServicesConfig holds external service API keys and configuration
type ServicesConfig struct {
	OpenAIAPIKey        string
	LeadProviderAPIKey  string
	LeadProviderBaseURL string
	ResendAPIKey        string
	DefaultEmailSender  string
	WebAppURI           string
}

// QuotaConfig holds the monthly enrichment quota settings
type QuotaConfig struct {
	MonthlyEnrichmentLimit int
}

// WorkerPoolConfig holds worker pool configuration for enrichment fan-out
type WorkerPoolConfig struct {
	EnrichmentWorkers int // Number of concurrent enrichment calls per import batch
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Auth configuration
	if cfg.Auth.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	// Services configuration
	if cfg.Services.OpenAIAPIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Services.LeadProviderAPIKey, err = requireEnv("LEAD_PROVIDER_API_KEY"); err != nil {
		return nil, err
	}
	cfg.Services.LeadProviderBaseURL = getEnvWithDefault("LEAD_PROVIDER_BASE_URL", "https://api.apollo.io")
	if cfg.Services.ResendAPIKey, err = requireEnv("RESEND_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Services.DefaultEmailSender, err = requireEnv("DEFAULT_EMAIL_SENDER_ADDRESS"); err != nil {
		return nil, err
	}
	if cfg.Services.WebAppURI, err = requireEnv("WEBAPP_URI"); err != nil {
		return nil, err
	}

	// Quota configuration
	quotaLimit := getEnvWithDefault("ENRICHMENT_QUOTA_LIMIT", "100")
	cfg.Quota.MonthlyEnrichmentLimit, err = strconv.Atoi(quotaLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ENRICHMENT_QUOTA_LIMIT: %w", err)
	}

	// Worker pool configuration
	enrichmentWorkers := getEnvWithDefault("ENRICHMENT_WORKERS", "5")
	cfg.WorkerPool.EnrichmentWorkers, err = strconv.Atoi(enrichmentWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ENRICHMENT_WORKERS: %w", err)
	}

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
