package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Storage backends
const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// ErrObjectTooLarge is returned by DownloadFile when an object exceeds the read limit
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// ObjectStore handles measurement table and result table storage
type ObjectStore interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	// DownloadFile reads at most maxBytes of the object; zero or less reads it whole
	DownloadFile(ctx context.Context, key string, maxBytes int64) ([]byte, error)
	UploadFile(ctx context.Context, key string, contentType string, data []byte) error
	DeleteFile(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
}

// Config holds configuration for the object store
type Config struct {
	Backend   string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	URLExpiry time.Duration
}

// New creates the object store selected by cfg.Backend
func New(cfg Config) (ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}

	switch cfg.Backend {
	case "", BackendS3:
		return NewS3Service(cfg)
	case BackendMinio:
		return NewMinioService(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// readLimited reads r to the end, failing with ErrObjectTooLarge once more
// than limit bytes have been seen
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrObjectTooLarge, limit)
	}
	return data, nil
}

// validateContentType validates that the content type is supported
func validateContentType(contentType string) error {
	validTypes := map[string]bool{
		"text/csv":                 true,
		"text/plain":               true,
		"application/vnd.ms-excel": true, // what Windows browsers send for .csv
		"application/octet-stream": true,
	}

	if !validTypes[contentType] {
		return fmt.Errorf("invalid content type: %s. Supported types: text/csv, text/plain, application/vnd.ms-excel, application/octet-stream", contentType)
	}

	return nil
}
