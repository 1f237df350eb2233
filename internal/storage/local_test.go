package storage

import (
	"context"
	"testing"
	"time"
)

func TestLocalStoreAndGet(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	if err := client.StoreFile(ctx, []byte("<html>report</html>"), "report.html", ts); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}

	path := SnapshotFolderPath(ts) + "/report.html"
	data, err := client.GetFile(ctx, path)
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if string(data) != "<html>report</html>" {
		t.Errorf("unexpected file contents: %s", data)
	}
}

func TestLocalGetFileNotFound(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	if _, err := client.GetFile(context.Background(), "snapshots/2024/01/01/missing.html"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLocalGetFileRejectsTraversal(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	if _, err := client.GetFile(context.Background(), "../../etc/passwd"); err == nil {
		t.Error("expected error for path traversal")
	}
}

func TestLocalListSnapshotsNewestFirst(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	timestamps := []time.Time{
		time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, ts := range timestamps {
		if err := client.StoreFile(ctx, []byte("report"), "report.html", ts); err != nil {
			t.Fatalf("StoreFile failed: %v", err)
		}
		// Non-report files must not show up as snapshots.
		if err := client.StoreFile(ctx, []byte("{}"), "data.json", ts); err != nil {
			t.Fatalf("StoreFile failed: %v", err)
		}
	}

	snapshots, err := client.ListSnapshots(ctx, 0)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d: %v", len(snapshots), snapshots)
	}
	if snapshots[0] != SnapshotFolderPath(timestamps[1]) {
		t.Errorf("expected newest snapshot first, got %s", snapshots[0])
	}
	if snapshots[2] != SnapshotFolderPath(timestamps[0]) {
		t.Errorf("expected oldest snapshot last, got %s", snapshots[2])
	}

	limited, err := client.ListSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 snapshots with limit, got %d", len(limited))
	}
}
