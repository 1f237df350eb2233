package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonzainsights/WorldInsights/internal/logger"
)

// LocalClient stores snapshot files on the local filesystem.
type LocalClient struct {
	baseDir string
	log     *logger.Logger
}

// NewLocalClient creates a filesystem-backed storage client rooted at baseDir.
func NewLocalClient(baseDir string) (*LocalClient, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local snapshot directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", baseDir, err)
	}
	return &LocalClient{
		baseDir: baseDir,
		log:     logger.WithComponent("storage"),
	}, nil
}

func (c *LocalClient) Close() error {
	return nil
}

// StoreFile writes fileData under the snapshot folder for timestamp.
func (c *LocalClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	folder := filepath.Join(c.baseDir, filepath.FromSlash(SnapshotFolderPath(timestamp)))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot folder: %w", err)
	}

	fullPath := filepath.Join(folder, filename)
	if err := os.WriteFile(fullPath, fileData, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}

	c.log.Debug("Stored snapshot file", map[string]interface{}{
		"path": fullPath,
		"size": len(fileData),
	})
	return nil
}

// GetFile reads a file by its snapshot-relative path.
func (c *LocalClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	fullPath := filepath.Join(c.baseDir, filepath.FromSlash(filePath))

	// Keep reads inside the snapshot directory.
	cleaned, err := filepath.Rel(c.baseDir, fullPath)
	if err != nil || strings.HasPrefix(cleaned, "..") {
		return nil, fmt.Errorf("invalid file path: %s", filePath)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return data, nil
}

// ListSnapshots returns snapshot folder paths, newest first, up to limit.
func (c *LocalClient) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	var snapshots []string

	err := filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != reportFilename {
			return nil
		}
		rel, err := filepath.Rel(c.baseDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		snapshots = append(snapshots, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	newestFirst(snapshots)
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}
