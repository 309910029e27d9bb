package tasks

import (
	"testing"
	"time"

	"github.com/nick-dorsch/dolist/pkg/models"
)

func at(t time.Time) *time.Time { return &t }

func TestComputeStats(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, loc)
	midnight := time.Date(2026, 10, 18, 0, 0, 0, 0, loc)

	collection := []models.Task{
		{ID: "1", Title: "today", Completed: true, CompletedAt: at(now.Add(-time.Hour))},
		{ID: "2", Title: "exactly midnight", Completed: true, CompletedAt: at(midnight)},
		{ID: "3", Title: "yesterday", Completed: true, CompletedAt: at(midnight.Add(-time.Nanosecond))},
		{ID: "4", Title: "pending"},
		{ID: "5", Title: "pending too"},
	}

	got := ComputeStats(collection, now)
	want := models.TaskStats{Total: 5, Completed: 3, Pending: 2, CompletedToday: 2}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestComputeStatsUsesLocalDay(t *testing.T) {
	// 23:30 UTC on the 17th is already the 18th in UTC+2.
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, loc)
	completed := time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)

	got := ComputeStats([]models.Task{{ID: "1", Title: "x", Completed: true, CompletedAt: &completed}}, now)
	if got.CompletedToday != 1 {
		t.Errorf("Expected completion at 01:30 local to count as today, got %d", got.CompletedToday)
	}

	// The same moment seen from UTC is the previous day.
	got = ComputeStats([]models.Task{{ID: "1", Title: "x", Completed: true, CompletedAt: &completed}}, now.In(time.UTC).Add(24*time.Hour))
	if got.CompletedToday != 0 {
		t.Errorf("Expected completion on a prior UTC day not to count, got %d", got.CompletedToday)
	}
}

func TestComputeStatsTotals(t *testing.T) {
	now := time.Now()
	collections := [][]models.Task{
		nil,
		{{ID: "1", Title: "a"}},
		{{ID: "1", Title: "a", Completed: true, CompletedAt: &now}},
		{{ID: "1", Title: "a"}, {ID: "2", Title: "b", Completed: true, CompletedAt: &now}, {ID: "3", Title: "c"}},
	}
	for i, c := range collections {
		s := ComputeStats(c, now)
		if s.Total != s.Completed+s.Pending {
			t.Errorf("collection %d: total %d != completed %d + pending %d", i, s.Total, s.Completed, s.Pending)
		}
		if s.Total != len(c) {
			t.Errorf("collection %d: expected total %d, got %d", i, len(c), s.Total)
		}
	}
}

func TestCompletedYesterdayIsNotToday(t *testing.T) {
	s, clock := newTestStore(t, &memoryPersister{})
	ctx := t.Context()

	task, _ := s.Add(ctx, "Buy milk")
	s.Toggle(ctx, task.ID)

	clock.Advance(24 * time.Hour)
	stats := s.Stats()
	if stats.Completed != 1 || stats.CompletedToday != 0 {
		t.Errorf("Expected completed=1 completedToday=0 the next day, got %+v", stats)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	in := time.Date(2026, 3, 9, 17, 45, 12, 99, loc)
	got := StartOfDay(in)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		stats models.TaskStats
		want  int
	}{
		{models.TaskStats{}, 0},
		{models.TaskStats{Total: 3, Completed: 1, Pending: 2}, 33},
		{models.TaskStats{Total: 3, Completed: 2, Pending: 1}, 67},
		{models.TaskStats{Total: 2, Completed: 2}, 100},
	}
	for _, tt := range tests {
		if got := tt.stats.CompletionRate(); got != tt.want {
			t.Errorf("CompletionRate(%+v): expected %d, got %d", tt.stats, tt.want, got)
		}
	}
}
