package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/recipebox/backend/config"
)

// S3 stores objects in a bucket. Works against MinIO through a custom endpoint.
type S3 struct {
	cfg        *config.S3Config
	uploader   *manager.Uploader
	presign    bool
	presignTTL time.Duration
}

// NewS3 wraps an initialized S3 client
func NewS3(cfg *config.S3Config, presign bool, presignTTL time.Duration) *S3 {
	return &S3{
		cfg: cfg,
		uploader: manager.NewUploader(cfg.Client, func(u *manager.Uploader) {
			u.PartSize = 5 * 1024 * 1024
			u.Concurrency = 2
		}),
		presign:    presign,
		presignTTL: presignTTL,
	}
}

func (s *S3) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.BucketName),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.cfg.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) URL(ctx context.Context, key string) (string, error) {
	if s.presign {
		return s.cfg.GeneratePresignedURL(ctx, key, s.presignTTL)
	}
	return s.cfg.PublicURL(key), nil
}
