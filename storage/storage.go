package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage keeps uploaded listing images and verification documents.
type Storage interface {
	// Save stores the content of reader under path.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

type Config struct {
	Type      string // local, s3
	BasePath  string // local
	BaseURL   string // public URL prefix
	Bucket    string // s3
	Region    string // s3
	AccessKey string // s3
	SecretKey string // s3
	Endpoint  string // s3-compatible endpoint, optional
}

func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
