package storage

import (
	"context"
	"fmt"

	"github.com/bonzainsights/WorldInsights/internal/config"
)

// Storage modes.
const (
	ModeLocal = "local"
	ModeGCS   = "gcs"
)

// NewClient creates a storage client for the configured deployment mode.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.StorageMode {
	case ModeLocal:
		return NewLocalClient(cfg.LocalSnapshotDir)
	case ModeGCS:
		return NewGCSClient(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage mode: %q", cfg.StorageMode)
	}
}
