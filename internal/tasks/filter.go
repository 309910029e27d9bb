package tasks

import "github.com/nick-dorsch/dolist/pkg/models"

// FilterTasks returns the tasks visible under f, keeping collection order.
// The result is a fresh slice; mutating it never touches the collection.
func FilterTasks(collection []models.Task, f models.Filter) []models.Task {
	out := make([]models.Task, 0, len(collection))
	for _, t := range collection {
		switch f {
		case models.FilterPending:
			if t.Completed {
				continue
			}
		case models.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, cloneTask(t))
	}
	return out
}

func cloneTask(t models.Task) models.Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

func cloneTasks(collection []models.Task) []models.Task {
	out := make([]models.Task, len(collection))
	for i, t := range collection {
		out[i] = cloneTask(t)
	}
	return out
}
