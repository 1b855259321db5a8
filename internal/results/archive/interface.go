// Package archive snapshots the durable results table to cold storage
// after a sweep, so a long-running study survives a lost working copy.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage is a cold-storage backend for results snapshots.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Snapshot copies the results table file into the backend under a
// timestamped key and returns that key.
func Snapshot(ctx context.Context, storage Storage, tablePath string) (string, error) {
	data, err := os.ReadFile(tablePath)
	if err != nil {
		return "", fmt.Errorf("reading results table: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("snapshots/%s/%d-%s",
		now.Format("2006-01-02"), now.Unix(), filepath.Base(tablePath))
	if err := storage.Write(ctx, key, data); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return key, nil
}
