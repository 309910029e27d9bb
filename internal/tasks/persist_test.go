package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nick-dorsch/dolist/internal/db"
	"github.com/nick-dorsch/dolist/internal/filestore"
	"github.com/nick-dorsch/dolist/pkg/models"
)

// Each backend is opened twice to simulate two sessions of the program.
func backends(t *testing.T) map[string]func() Persister {
	t.Helper()
	dir := t.TempDir()
	return map[string]func() Persister{
		"sqlite": func() Persister {
			database, err := db.Open(filepath.Join(dir, "dolist.db"))
			if err != nil {
				t.Fatalf("Failed to open database: %v", err)
			}
			t.Cleanup(func() { database.Close() })
			if err := database.Init(context.Background()); err != nil {
				t.Fatalf("Failed to init database: %v", err)
			}
			return database
		},
		"json": func() Persister {
			fs, err := filestore.New(filepath.Join(dir, "tasks.json"))
			if err != nil {
				t.Fatalf("Failed to create file store: %v", err)
			}
			t.Cleanup(func() { fs.Close() })
			return fs
		},
	}
}

func TestCollectionSurvivesRestart(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, clock := newTestStore(t, open())
			if err := first.Load(ctx); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			milk, _ := first.Add(ctx, "Buy milk")
			clock.Advance(1)
			first.Add(ctx, "Walk dog")
			if _, err := first.Toggle(ctx, milk.ID); err != nil {
				t.Fatalf("Toggle failed: %v", err)
			}
			want := first.Tasks()

			second, _ := newTestStore(t, open())
			if err := second.Load(ctx); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			got := second.Tasks()

			if len(got) != len(want) {
				t.Fatalf("Expected %d tasks, got %d", len(want), len(got))
			}
			if !sameTasks(want, got) {
				t.Errorf("Expected %+v after restart, got %+v", want, got)
			}
			if stats := second.Stats(); stats.CompletedToday != 1 || stats.Pending != 1 {
				t.Errorf("Expected 1 completed today and 1 pending, got %+v", stats)
			}
		})
	}
}

func TestCorruptDataFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("<html>"), 0644); err != nil {
		t.Fatalf("Failed to write data file: %v", err)
	}
	fs, err := filestore.New(path)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	defer fs.Close()

	s, _ := newTestStore(t, fs)
	err = s.Load(context.Background())
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, models.ErrCorrupt) {
		t.Fatalf("Expected a persistence error wrapping ErrCorrupt, got %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected empty collection, got %+v", s.Tasks())
	}

	// The store is still usable and the next save replaces the bad file.
	if _, err := s.Add(context.Background(), "Fresh start"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	loaded, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Fresh start" {
		t.Errorf("Expected the new task on disk, got %+v", loaded)
	}
}
