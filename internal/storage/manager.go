package storage

import (
	"context"
	"fmt"
)

// Backend identifies a storage backend implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Settings describes how to construct a FileProvider.
type Settings struct {
	Backend  Backend
	BaseDir  string
	S3Bucket string
	S3Prefix string
	S3Region string
}

// NewFileProvider constructs a FileProvider for the configured backend.
func NewFileProvider(ctx context.Context, settings Settings) (FileProvider, error) {
	switch settings.Backend {
	case BackendLocal, "":
		if settings.BaseDir == "" {
			return nil, fmt.Errorf("local storage requires a base directory")
		}
		return NewLocalFileProvider(settings.BaseDir), nil
	case BackendS3:
		if settings.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		client, err := NewAWSS3Client(ctx, settings.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return NewS3FileProvider(settings.S3Bucket, settings.S3Prefix, client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
}
