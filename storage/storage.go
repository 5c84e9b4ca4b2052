// Package storage archives run artifacts (screenshots and finished reports)
// to the local filesystem or S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/spf13/afero"
)

// Key prefixes for archived artifacts.
const (
	ScreenshotPrefix = "screenshots"
	ReportPrefix     = "reports"
)

// BlobStorage stores binary artifacts under slash separated keys.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the data at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a location for the data: a filesystem path for local
	// storage, a presigned URL for S3.
	GetURL(ctx context.Context, path string) (string, error)
}

// New creates the BlobStorage selected by cfg. Local storage writes through fs.
func New(ctx context.Context, cfg config.StorageConfig, fs afero.Fs) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalStorage(fs, cfg.BaseDir)

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if cfg.S3Region == "" {
			return nil, fmt.Errorf("region is required for S3 storage")
		}

		s3Storage, err := NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		if cfg.S3PresignExpiry > 0 {
			s3Storage.presignExpiration = cfg.S3PresignExpiry
		}
		return s3Storage, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ScreenshotKey is where a scenario screenshot is archived.
func ScreenshotKey(runID, fileName string) string {
	return path.Join(ScreenshotPrefix, runID, fileName)
}

// ReportKey is where a finished report is archived.
func ReportKey(fileName string) string {
	return path.Join(ReportPrefix, fileName)
}

// contentType guesses the MIME type of an artifact from its name.
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
