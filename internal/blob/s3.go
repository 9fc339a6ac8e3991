package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps objects in an AWS S3 bucket
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
	log     *log.Logger
}

// NewS3Store builds a client from static credentials. A configured endpoint
// switches to path-style addressing for S3 compatible services.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Blob.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Blob.AccessKey,
			cfg.Blob.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Blob.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Blob.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.Blob.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://s3." + cfg.Blob.Region + ".amazonaws.com"
	}
	return newS3Store(client, cfg.Blob.Bucket, baseURL), nil
}

func newS3Store(client s3API, bucket, baseURL string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		log:     logger.Blob("s3"),
	}
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		s.log.Error("Failed to upload object", "key", key, "error", err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	s.log.Debug("Object uploaded", "key", key, "size", size)
	return ObjectURL(s.baseURL, s.bucket, key), nil
}

func (s *S3Store) Delete(ctx context.Context, objectURL string) error {
	key, err := KeyFromURL(objectURL, s.bucket)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.log.Error("Failed to delete object", "key", key, "error", err)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.log.Debug("Object deleted", "key", key)
	return nil
}
