package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// MinioStore keeps objects in a MinIO (or any S3 compatible) bucket
type MinioStore struct {
	client  minioAPI
	bucket  string
	region  string
	baseURL string
	log     *log.Logger
}

// NewMinioStore connects to the endpoint and makes sure the bucket exists
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Blob.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Blob.AccessKey, cfg.Blob.SecretKey, ""),
		Secure: cfg.Blob.UseSSL,
		Region: cfg.Blob.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	baseURL := cfg.Blob.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.Blob.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Blob.Endpoint
	}

	store := newMinioStore(client, cfg.Blob.Bucket, cfg.Blob.Region, baseURL)
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func newMinioStore(client minioAPI, bucket, region, baseURL string) *MinioStore {
	return &MinioStore{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
		log:     logger.Blob("minio"),
	}
}

// EnsureBucket creates the bucket when it is missing
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		s.log.Error("Failed to check bucket", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		s.log.Error("Failed to create bucket", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	s.log.Info("Bucket created", "bucket", s.bucket)
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error("Failed to upload object", "key", key, "error", err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	s.log.Debug("Object uploaded", "key", key, "size", info.Size)
	return ObjectURL(s.baseURL, s.bucket, key), nil
}

func (s *MinioStore) Delete(ctx context.Context, objectURL string) error {
	key, err := KeyFromURL(objectURL, s.bucket)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Error("Failed to delete object", "key", key, "error", err)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.log.Debug("Object deleted", "key", key)
	return nil
}
