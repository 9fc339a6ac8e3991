// Package blob stores uploaded images and resolves them back from their
// public URLs. Object URLs have the form <base>/<bucket>/<key>.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/domain/common"
)

// Key prefixes for list and draft uploads
const (
	FolderImages = "images"
	FolderDraft  = "draft"
)

// Store uploads and deletes objects
type Store interface {
	// Put stores body under key and returns the public URL of the object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object addressed by a URL previously returned by Put.
	Delete(ctx context.Context, objectURL string) error
}

// NewKey returns a fresh object key inside folder
func NewKey(folder string) string {
	return folder + "/" + uuid.NewString()
}

// ObjectURL builds the public URL of key
func ObjectURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + key
}

// KeyFromURL strips the bucket segment from the URL path and returns the key
func KeyFromURL(objectURL, bucket string) (string, error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", common.InvalidArgument("Invalid object URL")
	}

	segments := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(segments) != 2 || segments[1] == "" {
		return "", common.InvalidArgument("Invalid object URL")
	}
	if segments[0] != bucket {
		return "", common.InvalidArgument(fmt.Sprintf("Object URL is outside bucket %s", bucket))
	}
	return segments[1], nil
}

// New builds the store selected by the blob configuration
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Blob.Provider {
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "memory":
		return NewMemoryStore(cfg.Blob.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported blob provider: %s", cfg.Blob.Provider)
	}
}
