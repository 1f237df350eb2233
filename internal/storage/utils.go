package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// reportFilename is the file every snapshot folder is listed by.
const reportFilename = "report.html"

// SnapshotFolderPath generates a consistent folder path for snapshots.
// Format: snapshots/YYYY/MM/DD/InsightsReport-YYYY-MM-DD-HH-MM-SS
func SnapshotFolderPath(timestamp time.Time) string {
	return fmt.Sprintf("snapshots/%04d/%02d/%02d/InsightsReport-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

// ContentType determines the MIME content type from a file extension
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// newestFirst sorts snapshot paths in place, newest first. Snapshot
// folder names embed their timestamp, so lexicographic order is
// chronological.
func newestFirst(paths []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
}
