package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/domain/common"
)

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"aws url", "https://s3.ap-south-1.amazonaws.com/giftlist/images/abc", "images/abc", false},
		{"nested key", "http://localhost:9000/giftlist/draft/a/b", "draft/a/b", false},
		{"other bucket", "https://s3.ap-south-1.amazonaws.com/other/images/abc", "", true},
		{"bucket only", "https://s3.ap-south-1.amazonaws.com/giftlist/", "", true},
		{"garbage", "://nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyFromURL(tt.url, "giftlist")
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey(FolderImages)
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.NotEqual(t, key, NewKey(FolderImages))
}

type fakeS3 struct {
	put     *s3.PutObjectInput
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePutAndDelete(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Store(fake, "giftlist", "https://s3.ap-south-1.amazonaws.com")

	url, err := store.Put(context.Background(), "images/k1", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.ap-south-1.amazonaws.com/giftlist/images/k1", url)
	assert.Equal(t, "giftlist", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.put.ContentLength))

	require.NoError(t, store.Delete(context.Background(), url))
	assert.Equal(t, []string{"images/k1"}, fake.deleted)
}

func TestS3StoreErrors(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	store := newS3Store(fake, "giftlist", "https://s3.ap-south-1.amazonaws.com")

	_, err := store.Put(context.Background(), "images/k1", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)

	err = store.Delete(context.Background(), "https://s3.ap-south-1.amazonaws.com/giftlist/images/k1")
	assert.Error(t, err)
}

func TestNewS3StoreAppliesEndpoint(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "ap-south-1", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	cfg := &config.Config{}
	cfg.Blob.Region = "ap-south-1"
	cfg.Blob.Bucket = "giftlist"
	cfg.Blob.Endpoint = "http://127.0.0.1:9000"

	store, err := NewS3Store(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "https://s3.ap-south-1.amazonaws.com", store.baseURL)
}

type fakeMinio struct {
	exists  bool
	made    bool
	removed []string
	putErr  error
}

func (f *fakeMinio) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (f *fakeMinio) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, object)
	return nil
}

func (f *fakeMinio) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, nil
}

func (f *fakeMinio) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made = true
	return nil
}

func TestMinioStore(t *testing.T) {
	fake := &fakeMinio{}
	store := newMinioStore(fake, "giftlist", "ap-south-1", "http://localhost:9000")

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.True(t, fake.made)

	url, err := store.Put(context.Background(), "draft/k2", strings.NewReader("gif"), 3, "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/giftlist/draft/k2", url)

	require.NoError(t, store.Delete(context.Background(), url))
	assert.Equal(t, []string{"draft/k2"}, fake.removed)

	assert.ErrorIs(t, store.Delete(context.Background(), "http://localhost:9000/elsewhere/draft/k2"), common.ErrInvalidArgument)
}

func TestMinioStoreSkipsExistingBucket(t *testing.T) {
	fake := &fakeMinio{exists: true}
	store := newMinioStore(fake, "giftlist", "", "http://localhost:9000")

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.False(t, fake.made)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("giftlist")

	url, err := store.Put(context.Background(), "images/k3", strings.NewReader("jpg"), 3, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, store.Has("images/k3"))

	require.NoError(t, store.Delete(context.Background(), url))
	assert.False(t, store.Has("images/k3"))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Blob.Provider = "ftp"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
