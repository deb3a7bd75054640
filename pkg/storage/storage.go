// Package storage provides S3-compatible object storage for backup
// artifacts. It is optional infrastructure: when no bucket is configured
// the backup service keeps artifacts inline in Postgres instead.
package storage

import (
	"context"
	"io"
)

// Storage is the object store interface used by the backup service.
type Storage interface {
	// Put uploads data under the given key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get retrieves an object. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name. Empty means storage is disabled.
	Bucket string `env:"BACKUP_S3_BUCKET"`

	// AccessKey and SecretKey are the static credentials.
	AccessKey string `env:"BACKUP_S3_ACCESS_KEY"`
	SecretKey string `env:"BACKUP_S3_SECRET_KEY"`

	// Endpoint is a custom S3 endpoint URL for S3-compatible services.
	Endpoint string `env:"BACKUP_S3_ENDPOINT"`

	// Region is the AWS region.
	Region string `env:"BACKUP_S3_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"BACKUP_S3_PATH_STYLE" envDefault:"false"`
}

// Configured reports whether a bucket and credentials are present.
func (c Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}
