package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CommentStorePostgres = "postgres"
	CommentStoreRedis    = "redis"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// Authentication
	JWTSecret       string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" default:"168h"`

	// Comment storage
	RedisURL     string `env:"REDIS_URL" default:"redis://localhost:6379/0"`
	CommentStore string `env:"COMMENT_STORE" default:"postgres"`

	// Audio storage (Supabase Storage)
	SupabaseURL   string `env:"SUPABASE_URL"`
	SupabaseKey   string `env:"SUPABASE_KEY"`
	AudioBucket   string `env:"AUDIO_BUCKET" default:"podcasthub-audio"`
	UploadMaxSize string `env:"UPLOAD_MAX_SIZE" default:"50MB"`

	// Domain rules
	CommentEditWindow   time.Duration `env:"COMMENT_EDIT_WINDOW" default:"24h"`
	PopularDefaultCount int           `env:"POPULAR_DEFAULT_COUNT" default:"20"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`

	// Rate limiting on /api/auth
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" default:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" default:"10"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("dotenv_not_loaded", "error", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	// Comment storage
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://localhost:6379/0"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.CommentStore, "COMMENT_STORE", CommentStorePostgres); err != nil {
		return nil, err
	}
	config.CommentStore = strings.ToLower(config.CommentStore)

	// Audio storage
	if err := loadEnvString(&config.SupabaseURL, "SUPABASE_URL", ""); err != nil {
		return nil, err
	}
	config.SupabaseURL = strings.TrimRight(config.SupabaseURL, "/")
	if err := loadEnvString(&config.SupabaseKey, "SUPABASE_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AudioBucket, "AUDIO_BUCKET", "podcasthub-audio"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.UploadMaxSize, "UPLOAD_MAX_SIZE", "50MB"); err != nil {
		return nil, err
	}

	// Domain rules
	if err := loadEnvDuration(&config.CommentEditWindow, "COMMENT_EDIT_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.PopularDefaultCount, "POPULAR_DEFAULT_COUNT", 20); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}); err != nil {
		return nil, err
	}

	// Rate limiting
	if err := loadEnvFloat(&config.AuthRateLimit, "AUTH_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.AuthRateBurst, "AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		// Trim whitespace from each element
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// JWT secret should be at least 32 characters
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	validStores := []string{CommentStorePostgres, CommentStoreRedis}
	if !contains(validStores, c.CommentStore) {
		errors = append(errors, fmt.Sprintf("COMMENT_STORE must be one of: %s", strings.Join(validStores, ", ")))
	}
	if c.CommentStore == CommentStoreRedis && c.RedisURL == "" {
		errors = append(errors, "REDIS_URL is required when COMMENT_STORE=redis")
	}

	if c.CommentEditWindow <= 0 {
		errors = append(errors, "COMMENT_EDIT_WINDOW must be positive")
	}
	if c.PopularDefaultCount < 1 {
		errors = append(errors, "POPULAR_DEFAULT_COUNT must be at least 1")
	}
	if _, err := c.UploadMaxBytes(); err != nil {
		errors = append(errors, err.Error())
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst < 1 {
		errors = append(errors, "AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}

	if c.IsProduction() && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		errors = append(errors, "SUPABASE_URL and SUPABASE_KEY are required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// UploadMaxBytes parses UPLOAD_MAX_SIZE ("50MB", "512KB", "1GB" or plain bytes).
func (c *Config) UploadMaxBytes() (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.UploadMaxSize))
	units := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}
	mult := int64(1)
	for _, u := range units {
		if strings.HasSuffix(raw, u.suffix) {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("UPLOAD_MAX_SIZE %q is not a valid size", c.UploadMaxSize)
	}
	return n * mult, nil
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
