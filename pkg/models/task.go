package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TaskStats is derived from a collection and never persisted.
type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletedToday int `json:"completedToday"`
}

// CompletionRate returns the share of completed tasks as a whole percentage.
func (s TaskStats) CompletionRate() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Filters lists the display modes in tab order.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted}

// ParseFilter maps a user-supplied mode name to a Filter. An empty name means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPending:
		return FilterPending, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q (want all, pending or completed)", s)
	}
}

// Label is the tab caption for the mode.
func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// EmptyState returns the heading and hint shown when the mode matches no tasks.
func (f Filter) EmptyState() (heading, hint string) {
	switch f {
	case FilterPending:
		return "No pending tasks", "All your tasks are completed. Great job!"
	case FilterCompleted:
		return "No completed tasks", "Complete some tasks to see them here."
	default:
		return "No tasks yet", "Add your first task to get started!"
	}
}
