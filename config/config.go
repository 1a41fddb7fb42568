package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	CSVInputPath  string
	CSVExportPath string

	StorageBackend string
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RollingWindow        int
	SentimentLexiconPath string

	APIHost        string
	APIPort        int
	APIKey         string
	RateLimitRPS   int
	RateLimitBurst int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		CSVInputPath:  getEnv("CSV_INPUT_PATH", "./data/reviews.csv"),
		CSVExportPath: getEnv("CSV_EXPORT_PATH", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/reviews_db.sqlite"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "reviews"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "reviews123"),
		PostgresDB:       getEnv("POSTGRES_DB", "reviews_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RollingWindow:        getEnvInt("ROLLING_WINDOW", 3),
		SentimentLexiconPath: getEnv("SENTIMENT_LEXICON_PATH", ""),

		APIHost:        getEnv("API_HOST", "127.0.0.1"),
		APIPort:        getEnvInt("API_PORT", 8000),
		APIKey:         getEnv("API_KEY", ""),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorageBackend != BackendSQLite && c.StorageBackend != BackendPostgres {
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q",
			BackendSQLite, BackendPostgres, c.StorageBackend)
	}
	if c.RollingWindow < 1 {
		return fmt.Errorf("ROLLING_WINDOW must be at least 1, got %d", c.RollingWindow)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}
	if c.RateLimitRPS < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// APIAddress returns the host:port the read API listens on.
func (c *Config) APIAddress() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
