package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nick-dorsch/dolist/pkg/models"
)

func sampleTasks() []models.Task {
	created := time.Date(2026, 10, 17, 23, 59, 59, 123456789, time.FixedZone("CEST", 2*60*60))
	done := created.Add(90 * time.Second)
	return []models.Task{
		{ID: "b", Title: "Walk dog", CreatedAt: created.Add(time.Minute)},
		{ID: "a", Title: "Buy milk", Completed: true, CreatedAt: created, CompletedAt: &done},
	}
}

func assertSameTasks(t *testing.T, want, got []models.Task) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.ID != g.ID || w.Title != g.Title || w.Completed != g.Completed {
			t.Errorf("task %d: expected %+v, got %+v", i, w, g)
		}
		if !w.CreatedAt.Equal(g.CreatedAt) {
			t.Errorf("task %d: expected CreatedAt %v, got %v", i, w.CreatedAt, g.CreatedAt)
		}
		if (w.CompletedAt == nil) != (g.CompletedAt == nil) {
			t.Fatalf("task %d: CompletedAt presence mismatch", i)
		}
		if w.CompletedAt != nil && !w.CompletedAt.Equal(*g.CompletedAt) {
			t.Errorf("task %d: expected CompletedAt %v, got %v", i, *w.CompletedAt, *g.CompletedAt)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t)

	tasks, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected empty collection, got %#v", tasks)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	want := sampleTasks()

	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameTasks(t, want, got)

	// save(load()) is stable
	if err := db.Save(ctx, got); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	again, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameTasks(t, want, again)
}

func TestRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dolist.db")
	ctx := context.Background()
	want := sampleTasks()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameTasks(t, want, got)
}

func TestLoadCorrupt(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PutRecord(ctx, RecordKey, "{not json"); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	tasks, err := db.Load(ctx)
	if !errors.Is(err, models.ErrCorrupt) {
		t.Fatalf("Expected ErrCorrupt, got %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected empty collection alongside the error, got %#v", tasks)
	}
}

func TestRecordUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PutRecord(ctx, "k", "one"); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}
	if err := db.PutRecord(ctx, "k", "two"); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	value, err := db.GetRecord(ctx, "k")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if value == nil || *value != "two" {
		t.Errorf("Expected value two, got %v", value)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record, got %d", count)
	}

	missing, err := db.GetRecord(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for missing record, got %v, %v", missing, err)
	}
}
