package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "insecure-development-secret"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Database configuration
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"recipebox"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"recipebox.db"`
	// Apply pending migrations when the API starts
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Redis configuration, optional. Rate limiting falls back to an
	// in-process limiter when neither RedisURL nor RedisHost is set.
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET" envDefault:"insecure-development-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Uploaded media
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaURL       string `env:"MEDIA_URL" envDefault:"/media"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	S3 S3Settings

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Requests per hour, per user
	RecipeCreateLimit int `env:"RATE_LIMIT_RECIPE_CREATE" envDefault:"60"`
	ImageUploadLimit  int `env:"RATE_LIMIT_IMAGE_UPLOAD" envDefault:"30"`
}

// S3Settings configures the S3 (or MinIO) image storage backend
type S3Settings struct {
	Bucket          string        `env:"S3_BUCKET_NAME" envDefault:"recipebox-media"`
	Region          string        `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint        string        `env:"S3_ENDPOINT"`
	AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool          `env:"S3_USE_PATH_STYLE"`
	Presign         bool          `env:"S3_PRESIGN"`
	PresignTTL      time.Duration `env:"S3_PRESIGN_TTL" envDefault:"1h"`
}

// LoadConfig reads configuration from the environment (and an optional .env
// file), overlays Docker secrets and validates the result.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// In CI, secrets come from the environment only
	if GetEnvironment() != CI {
		overlaySecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// DatabaseURL returns the postgres URL form used by the migration tool
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// overlaySecrets replaces sensitive values with Docker secrets when present
func overlaySecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("s3_secret_access_key"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
