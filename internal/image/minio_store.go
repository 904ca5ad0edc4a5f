package image

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOStore adapts minio.Client to the objectStore interface.
type MinIOStore struct {
	client *minio.Client
}

// NewMinIOStore constructs an adapter.
func NewMinIOStore(client *minio.Client) *MinIOStore {
	return &MinIOStore{client: client}
}

func (s *MinIOStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinIOStore) RemoveObject(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinIOStore) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	return s.client.PresignedGetObject(ctx, bucket, key, expiry, reqParams)
}
