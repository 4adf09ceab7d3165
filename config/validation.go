package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validDrivers  = []string{"postgres", "sqlite"}
	validBackends = []string{"local", "s3"}
	validFormats  = []string{"json", "text"}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be set"})
	}
	if !contains(validDrivers, cfg.DBDriver) {
		errs = append(errs, ValidationError{"DB_DRIVER", "must be one of " + strings.Join(validDrivers, ", ")})
	}
	if !contains(validBackends, cfg.StorageBackend) {
		errs = append(errs, ValidationError{"STORAGE_BACKEND", "must be one of " + strings.Join(validBackends, ", ")})
	}
	if !contains(validFormats, cfg.LogFormat) {
		errs = append(errs, ValidationError{"LOG_FORMAT", "must be one of " + strings.Join(validFormats, ", ")})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "must be set"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{"MAX_UPLOAD_BYTES", "must be positive"})
	}
	if cfg.RecipeCreateLimit <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_RECIPE_CREATE", "must be positive"})
	}
	if cfg.ImageUploadLimit <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_IMAGE_UPLOAD", "must be positive"})
	}
	if cfg.StorageBackend == "s3" && cfg.S3.Bucket == "" {
		errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for the s3 storage backend"})
	}

	if env == Production {
		if cfg.JWTSecret == DefaultJWTSecret {
			errs = append(errs, ValidationError{"JWT_SECRET", "jwt_secret secret is required in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "db_password secret is required in production"})
		}
	}

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
