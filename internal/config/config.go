package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Predictor  PredictorConfig
	App        AppConfig
	History    HistoryConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred over the individual fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// PredictorConfig holds the remote price-prediction API configuration
type PredictorConfig struct {
	APIURL       string // full chat-completions URL
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      int // seconds
	MaxAttempts  int // 2 = one retry on transport errors
	RetryDelayMs int
	LenientJSON  bool // extract JSON from prose/markdown instead of strict parsing
	Enabled      bool
}

// AppConfig holds presentation defaults shared by the estimators
type AppConfig struct {
	DefaultConfidence float64
	LoadingMessage    string
	Currency          string
	CurrencyLocale    string
}

// HistoryConfig holds prediction log listing limits
type HistoryConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	dsn := getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", "")))

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                dsn,
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "price_predictor"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
			Enabled:            getEnvAsBool("PG_ENABLED", dsn != ""),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Predictor: PredictorConfig{
			APIURL:       getEnv("PREDICTOR_API_URL", "https://api.perplexity.ai/chat/completions"),
			APIKey:       getEnv("PREDICTOR_API_KEY", ""),
			Model:        getEnv("PREDICTOR_MODEL", "sonar"),
			MaxTokens:    getEnvAsInt("PREDICTOR_MAX_TOKENS", 500),
			Temperature:  getEnvAsFloat("PREDICTOR_TEMPERATURE", 0.3),
			Timeout:      getEnvAsInt("PREDICTOR_TIMEOUT", 20),
			MaxAttempts:  getEnvAsInt("PREDICTOR_MAX_ATTEMPTS", 2),
			RetryDelayMs: getEnvAsInt("PREDICTOR_RETRY_DELAY_MS", 500),
			LenientJSON:  getEnvAsBool("PREDICTOR_LENIENT_JSON", false),
			Enabled:      getEnv("PREDICTOR_API_KEY", "") != "",
		},
		App: AppConfig{
			DefaultConfidence: getEnvAsFloat("APP_DEFAULT_CONFIDENCE", 0.7),
			LoadingMessage:    getEnv("APP_LOADING_MESSAGE", "🤖 Analyzing with AI..."),
			Currency:          getEnv("APP_CURRENCY", "₹"),
			CurrencyLocale:    getEnv("CURRENCY_LOCALE", "en"),
		},
		History: HistoryConfig{
			DefaultLimit: getEnvAsInt("HISTORY_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("HISTORY_MAX_LIMIT", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise break the estimators silently
func (c *Config) Validate() error {
	if c.App.DefaultConfidence < 0 || c.App.DefaultConfidence > 1 {
		return fmt.Errorf("APP_DEFAULT_CONFIDENCE must be between 0 and 1, got %.2f", c.App.DefaultConfidence)
	}
	if c.Predictor.MaxAttempts < 1 {
		return fmt.Errorf("PREDICTOR_MAX_ATTEMPTS must be at least 1, got %d", c.Predictor.MaxAttempts)
	}
	if c.Predictor.Timeout <= 0 {
		return fmt.Errorf("PREDICTOR_TIMEOUT must be positive, got %d", c.Predictor.Timeout)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// SplitList splits a comma separated config value, dropping blanks
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
