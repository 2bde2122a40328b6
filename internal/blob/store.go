// Package blob implements the content-addressed object store used for
// uploaded images. Objects live under keys derived from the content hash,
// so identical uploads land on the same key and deletes are idempotent.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"waverider/internal/config"
	"waverider/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store abstracts the blob host so services and tests do not depend on MinIO.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// OriginalKey returns the object key for the master rendition of a hash.
func OriginalKey(hash, ext string) string {
	return fmt.Sprintf("i/%s/original.%s", hash, ext)
}

// ThumbKey returns the object key for the thumbnail rendition of a hash.
func ThumbKey(hash string) string {
	return fmt.Sprintf("i/%s/thumb.webp", hash)
}

// MinIOStore is the MinIO/S3-backed Store implementation.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOStore connects to the configured object store and ensures the
// bucket exists.
func NewMinIOStore(ctx context.Context, cfg *config.Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.BlobEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BlobAccessKey, cfg.BlobSecretKey, ""),
		Secure: cfg.BlobUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store connection failed: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BlobBucket)
	if err != nil {
		return nil, fmt.Errorf("blob bucket check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BlobBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("blob bucket creation failed: %w", err)
		}
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.BlobBucket,
		publicURL: strings.TrimRight(cfg.BlobPublicURL, "/"),
	}, nil
}

func (s *MinIOStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		observability.BlobOperations.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	observability.BlobOperations.WithLabelValues("put", "ok").Inc()
	return nil
}

func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		observability.BlobOperations.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("blob remove %s: %w", key, err)
	}
	observability.BlobOperations.WithLabelValues("remove", "ok").Inc()
	return nil
}

func (s *MinIOStore) URL(key string) string {
	return s.publicURL + "/" + key
}
