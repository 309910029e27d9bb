// Package filestore persists the task collection as a JSON file. Reads and
// writes are serialized across processes with a lock file, and writes land
// through an atomic rename so readers never observe a partial file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/nick-dorsch/dolist/internal/fsutil"
	"github.com/nick-dorsch/dolist/pkg/models"
)

// DefaultFileName is used when the store is given a directory.
const DefaultFileName = "tasks.json"

type Store struct {
	path string
	lock *flock.Flock
}

// New returns a store for the JSON file at path. If path is an existing
// directory, DefaultFileName inside it is used.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the collection. A missing file yields an empty collection; an
// undecodable one yields an empty collection and an error wrapping
// models.ErrCorrupt.
func (s *Store) Load(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return []models.Task{}, err
	}
	if err := s.lock.RLock(); err != nil {
		return []models.Task{}, fmt.Errorf("failed to lock %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Task{}, nil
	}
	if err != nil {
		return []models.Task{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	collection, err := models.DecodeTasks(data)
	if err != nil {
		return []models.Task{}, fmt.Errorf("failed to load %s: %w", s.path, err)
	}
	return collection, nil
}

// Save replaces the file contents with the encoded collection.
func (s *Store) Save(ctx context.Context, collection []models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := models.EncodeTasks(collection)
	if err != nil {
		return err
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	return fsutil.WriteFileAtomic(s.path, data)
}

// ExportSnapshot writes the stored collection to path as indented JSON.
func (s *Store) ExportSnapshot(ctx context.Context, path string) error {
	collection, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tasks for snapshot: %w", err)
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'))
}

// ImportSnapshot replaces the stored collection with the one in path. A
// corrupt snapshot is an error and nothing is written.
func (s *Store) ImportSnapshot(ctx context.Context, path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}

	collection, err := models.DecodeTasks(data)
	if err != nil {
		return nil, fmt.Errorf("failed to import snapshot %s: %w", path, err)
	}
	if err := s.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to import snapshot %s: %w", path, err)
	}
	return collection, nil
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}
