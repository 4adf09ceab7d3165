// Package storage persists uploaded media and resolves public URLs for it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pageza/recipebox/backend/config"
)

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Storage stores objects by key
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// New builds the backend selected by cfg.StorageBackend
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		if err := s3cfg.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return NewS3(s3cfg, cfg.S3.Presign, cfg.S3.PresignTTL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
