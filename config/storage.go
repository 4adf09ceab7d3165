package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Endpoint   string
	Region     string
	PathStyle  bool
}

// NewS3Config initializes the S3 client from the storage settings. A custom
// endpoint (MinIO, localstack) switches on static credentials when given.
func NewS3Config(ctx context.Context, settings S3Settings) (*S3Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
		}
		o.UsePathStyle = settings.UsePathStyle
	})

	return &S3Config{
		Client:     client,
		BucketName: settings.Bucket,
		Endpoint:   settings.Endpoint,
		Region:     settings.Region,
		PathStyle:  settings.UsePathStyle,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3Config) EnsureBucket(ctx context.Context) error {
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.BucketName),
	})
	if err == nil {
		return nil
	}

	if _, err := s.Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.BucketName),
	}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.BucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(s.Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.BucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket %q: %w", s.BucketName, err)
	}
	return nil
}

// GeneratePresignedURL generates a presigned URL for the given object key with the specified expiration time
func (s *S3Config) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}

// PublicURL returns the unsigned object URL
func (s *S3Config) PublicURL(objectKey string) string {
	if s.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.Endpoint, s.BucketName, objectKey)
	}
	if s.PathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.Region, s.BucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.BucketName, objectKey)
}
