package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nick-dorsch/dolist/internal/fsutil"
	"github.com/nick-dorsch/dolist/pkg/models"
)

// EnableAutoSnapshot sets up a hook that automatically exports a snapshot
// to the given path after every successful save. Export failures are logged
// and do not fail the save.
func (db *DB) EnableAutoSnapshot(path string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	db.SetOnChange(func(ctx context.Context) {
		if err := db.ExportSnapshot(ctx, path); err != nil {
			logger.Warn("failed to export snapshot", "path", path, "error", err)
		}
	})
}

// ExportSnapshot writes the stored task collection to path as indented JSON,
// atomically via a temporary file.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	collection, err := db.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tasks for snapshot: %w", err)
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data = append(data, '\n')

	return fsutil.WriteFileAtomic(path, data)
}

// ImportSnapshot replaces the stored collection with the one in path.
// Unlike Load, a corrupt snapshot is an error and nothing is written.
func (db *DB) ImportSnapshot(ctx context.Context, path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}

	collection, err := models.DecodeTasks(data)
	if err != nil {
		return nil, fmt.Errorf("failed to import snapshot %s: %w", path, err)
	}

	if err := db.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to import snapshot %s: %w", path, err)
	}
	return collection, nil
}
