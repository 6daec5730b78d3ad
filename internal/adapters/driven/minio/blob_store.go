package minio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BlobStore = (*BlobStore)(nil)

// Config holds the connection settings for the object storage backend.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// PublicBaseURL is the externally reachable URL prefix for stored
	// objects ("" derives one from the endpoint and bucket)
	PublicBaseURL string
}

// BlobStore implements driven.BlobStore on MinIO/S3 compatible storage.
// Keys are deterministic per source message, so Head doubles as the
// "was this file already uploaded" check.
type BlobStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewBlobStore connects to the object store and ensures the bucket exists.
func NewBlobStore(cfg Config) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &BlobStore{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Head returns metadata for a stored object.
// Returns domain.ErrNotFound when the key does not exist.
func (s *BlobStore) Head(ctx context.Context, key string) (*driven.BlobInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return &driven.BlobInfo{
		Key:         key,
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
		URL:         s.url(key),
	}, nil
}

// Put stores an object and returns its public URL.
func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.url(key), nil
}

// Remove deletes an object.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Ping checks if the blob backend is healthy.
func (s *BlobStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *BlobStore) url(key string) string {
	return s.baseURL + "/" + key
}
