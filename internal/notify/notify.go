// Package notify carries human-readable feedback about task mutations to
// whatever surface is listening (terminal UI status line, logs, tests).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelDestructive
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDestructive:
		return "destructive"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a single toast-style message.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       Level  `json:"level"`
}

func (n Notice) String() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + " " + n.Description
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a plain function to a Notifier.
type Func func(ctx context.Context, n Notice)

func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Multi fans a notice out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

// Log writes notices to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, n Notice) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, n.Title, "description", n.Description, "level", n.Level.String())
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func Added(title string) Notice {
	return Notice{
		Title:       "Task added!",
		Description: fmt.Sprintf("%q has been added to your list.", title),
	}
}

// Toggled describes a task after its completion state flipped.
func Toggled(title string, completed bool) Notice {
	if completed {
		return Notice{
			Title:       "Task completed!",
			Description: fmt.Sprintf("%q marked as completed.", title),
		}
	}
	return Notice{
		Title:       "Task reopened!",
		Description: fmt.Sprintf("%q marked as pending.", title),
	}
}

func Updated() Notice {
	return Notice{
		Title:       "Task updated!",
		Description: "Your task has been successfully updated.",
	}
}

func Deleted(title string) Notice {
	return Notice{
		Title:       "Task deleted!",
		Description: fmt.Sprintf("%q has been removed from your list.", title),
		Level:       LevelDestructive,
	}
}

func Cleared(count int) Notice {
	plural := "s"
	if count == 1 {
		plural = ""
	}
	return Notice{
		Title:       "Completed tasks cleared!",
		Description: fmt.Sprintf("%d completed task%s removed.", count, plural),
	}
}

func Failed(err error) Notice {
	return Notice{
		Title:       "Task not saved",
		Description: err.Error(),
		Level:       LevelError,
	}
}
