// Package storage keeps archived log data in a local directory or an S3 bucket.
package storage

import (
	"context"

	"coin_backend/internal/platform/config"
)

// Storage stores an object under key.
type Storage interface {
	Put(ctx context.Context, key string, body []byte) error
}

// NewStorage picks S3 when a bucket is configured, then a local directory.
// It returns nil when neither is set, which disables archiving.
func NewStorage(cfg config.RetentionConfig) (Storage, error) {
	switch {
	case cfg.ArchiveBucket != "":
		s, err := NewS3Storage(cfg.ArchiveRegion, cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case cfg.ArchiveDir != "":
		s, err := NewLocalStorage(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}
