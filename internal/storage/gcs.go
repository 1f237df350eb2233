package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/bonzainsights/WorldInsights/internal/logger"
)

// GCSClient stores snapshot files in a Google Cloud Storage bucket.
type GCSClient struct {
	client     *gcs.Client
	bucketName string
	log        *logger.Logger
}

// NewGCSClient creates a GCS-backed storage client using application
// default credentials.
func NewGCSClient(ctx context.Context, bucketName string) (*GCSClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
		log:        logger.WithComponent("storage"),
	}, nil
}

func (c *GCSClient) Close() error {
	return c.client.Close()
}

// StoreFile uploads fileData under the snapshot folder for timestamp.
func (c *GCSClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	objectPath := SnapshotFolderPath(timestamp) + "/" + filename

	obj := c.client.Bucket(c.bucketName).Object(objectPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = ContentType(filename)
	writer.CacheControl = "public, max-age=3600"
	writer.Metadata = map[string]string{
		"generated-at": timestamp.UTC().Format(time.RFC3339),
	}

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}

	c.log.Debug("Uploaded snapshot file", map[string]interface{}{
		"bucket": c.bucketName,
		"object": objectPath,
		"size":   len(fileData),
	})
	return nil
}

// GetFile downloads an object by its snapshot-relative path.
func (c *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	reader, err := c.client.Bucket(c.bucketName).Object(filePath).NewReader(ctx)
	if err != nil {
		if err == gcs.ErrObjectNotExist {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", filePath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", filePath, err)
	}
	return data, nil
}

// ListSnapshots returns snapshot folder paths, newest first, up to limit.
func (c *GCSClient) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	query := &gcs.Query{Prefix: "snapshots/"}

	var snapshots []string
	it := c.client.Bucket(c.bucketName).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, "/"+reportFilename) {
			continue
		}
		snapshots = append(snapshots, strings.TrimSuffix(attrs.Name, "/"+reportFilename))
	}

	newestFirst(snapshots)
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}
