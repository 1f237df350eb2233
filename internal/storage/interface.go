package storage

import (
	"context"
	"time"
)

// Client is the contract for snapshot storage backends. A snapshot is
// one report run: a timestamped folder holding the dataset JSON, the
// correlation matrix, chart images, and the rendered HTML report.
type Client interface {
	// Close releases backend resources
	Close() error

	// StoreFile stores a file inside the snapshot folder for timestamp
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error

	// GetFile retrieves a file by its full storage path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListSnapshots lists report paths, newest first, up to limit
	ListSnapshots(ctx context.Context, limit int) ([]string, error)
}
