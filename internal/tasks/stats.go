package tasks

import (
	"time"

	"github.com/nick-dorsch/dolist/pkg/models"
)

// ComputeStats summarizes a collection. CompletedToday counts tasks whose
// completion falls on or after local midnight of now's calendar day.
func ComputeStats(collection []models.Task, now time.Time) models.TaskStats {
	startOfDay := StartOfDay(now)

	stats := models.TaskStats{Total: len(collection)}
	for _, t := range collection {
		if t.Completed {
			stats.Completed++
		}
		if t.CompletedAt != nil && !t.CompletedAt.Before(startOfDay) {
			stats.CompletedToday++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
