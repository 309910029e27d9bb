package notify

import (
	"context"
	"errors"
	"testing"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		n     Notice
		title string
		desc  string
		level Level
	}{
		{"added", Added("Buy milk"), "Task added!", `"Buy milk" has been added to your list.`, LevelInfo},
		{"completed", Toggled("Buy milk", true), "Task completed!", `"Buy milk" marked as completed.`, LevelInfo},
		{"reopened", Toggled("Buy milk", false), "Task reopened!", `"Buy milk" marked as pending.`, LevelInfo},
		{"updated", Updated(), "Task updated!", "Your task has been successfully updated.", LevelInfo},
		{"deleted", Deleted("Buy milk"), "Task deleted!", `"Buy milk" has been removed from your list.`, LevelDestructive},
		{"cleared one", Cleared(1), "Completed tasks cleared!", "1 completed task removed.", LevelInfo},
		{"cleared many", Cleared(3), "Completed tasks cleared!", "3 completed tasks removed.", LevelInfo},
		{"cleared none", Cleared(0), "Completed tasks cleared!", "0 completed tasks removed.", LevelInfo},
		{"failed", Failed(errors.New("boom")), "Task not saved", "boom", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.n.Title != tt.title {
				t.Errorf("Expected title %q, got %q", tt.title, tt.n.Title)
			}
			if tt.n.Description != tt.desc {
				t.Errorf("Expected description %q, got %q", tt.desc, tt.n.Description)
			}
			if tt.n.Level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, tt.n.Level)
			}
		})
	}
}

func TestRecorderAndMulti(t *testing.T) {
	var a, b Recorder
	calls := 0
	m := Multi{&a, nil, &b, Func(func(ctx context.Context, n Notice) { calls++ })}

	m.Notify(context.Background(), Added("x"))
	m.Notify(context.Background(), Updated())

	if len(a.Notices()) != 2 || len(b.Notices()) != 2 {
		t.Fatalf("Expected both recorders to hold 2 notices, got %d and %d", len(a.Notices()), len(b.Notices()))
	}
	if calls != 2 {
		t.Errorf("Expected func notifier to be called twice, got %d", calls)
	}

	last, ok := a.Last()
	if !ok || last.Title != "Task updated!" {
		t.Errorf("Expected last notice to be the update, got %+v", last)
	}

	var empty Recorder
	if _, ok := empty.Last(); ok {
		t.Error("Expected no last notice on empty recorder")
	}
}
