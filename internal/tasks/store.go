// Package tasks owns the canonical task collection: the mutation operations,
// the derived stats and filter views, and the persistence contract.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/dolist/internal/notify"
	"github.com/nick-dorsch/dolist/pkg/models"
)

// Persister durably stores the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]models.Task, error)
	Save(ctx context.Context, collection []models.Task) error
}

type Option func(*Store)

// WithClock overrides the time source used for CreatedAt, CompletedAt and Stats.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds the task collection. Every mutation either applies fully or
// leaves the collection untouched; the durable write is its last step.
type Store struct {
	mu        sync.Mutex
	persister Persister
	tasks     []models.Task

	now      func() time.Time
	newID    func() string
	notifier notify.Notifier
	logger   *slog.Logger

	listenersMu  sync.RWMutex
	listeners    map[int]func([]models.Task)
	nextListener int
}

func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		tasks:     []models.Task{},
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		logger:    slog.Default(),
		listeners: make(map[int]func([]models.Task)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one. A failed or corrupt
// load leaves the store empty and is returned as a *PersistenceError; the
// store stays usable either way.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		s.tasks = []models.Task{}
		s.mu.Unlock()
		s.logger.Warn("starting with an empty task list", "error", err)
		s.publish()
		return &PersistenceError{Op: "load", Err: err}
	}
	s.tasks = sanitize(loaded)
	count := len(s.tasks)
	s.mu.Unlock()

	s.logger.Debug("tasks loaded", "count", count)
	s.publish()
	return nil
}

// Reload re-reads the persisted collection. Unlike Load, a failure keeps the
// current in-memory collection.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return &PersistenceError{Op: "reload", Err: err}
	}
	loaded = sanitize(loaded)
	if sameTasks(s.tasks, loaded) {
		s.mu.Unlock()
		return nil
	}
	s.tasks = loaded
	s.mu.Unlock()

	s.logger.Debug("tasks reloaded", "count", len(loaded))
	s.publish()
	return nil
}

// Add creates a pending task at the front of the collection.
func (s *Store) Add(ctx context.Context, title string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, s.fail(ctx, validationError("title cannot be empty"))
	}

	s.mu.Lock()
	t := models.Task{
		ID:        s.uniqueID(),
		Title:     title,
		Completed: false,
		CreatedAt: s.now(),
	}
	next := make([]models.Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	err := s.commit(ctx, next)
	s.mu.Unlock()

	return s.finish(ctx, t, err, notify.Added(t.Title), "task added")
}

// Toggle flips a task between pending and completed.
func (s *Store) Toggle(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, s.fail(ctx, notFoundError(id))
	}

	t := cloneTask(s.tasks[i])
	t.Completed = !t.Completed
	if t.Completed {
		at := s.now()
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	next := cloneTasks(s.tasks)
	next[i] = t
	err := s.commit(ctx, next)
	s.mu.Unlock()

	return s.finish(ctx, t, err, notify.Toggled(t.Title, t.Completed), "task toggled")
}

// Update replaces a task's title with the trimmed value.
func (s *Store) Update(ctx context.Context, id, title string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, s.fail(ctx, validationError("title cannot be empty"))
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, s.fail(ctx, notFoundError(id))
	}

	t := cloneTask(s.tasks[i])
	t.Title = title
	next := cloneTasks(s.tasks)
	next[i] = t
	err := s.commit(ctx, next)
	s.mu.Unlock()

	return s.finish(ctx, t, err, notify.Updated(), "task updated")
}

// Delete removes a task. Unknown ids return ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return s.fail(ctx, notFoundError(id))
	}

	removed := s.tasks[i]
	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	err := s.commit(ctx, next)
	s.mu.Unlock()

	_, err = s.finish(ctx, removed, err, notify.Deleted(removed.Title), "task deleted")
	return err
}

// ClearCompleted removes every completed task and returns how many went.
// The collection is written even when nothing was removed.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	next := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(s.tasks) - len(next)
	err := s.commit(ctx, next)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to persist cleared tasks", "removed", removed, "error", err)
		s.notify(ctx, notify.Failed(err))
		s.publish()
		return removed, err
	}

	s.logger.Debug("completed tasks cleared", "removed", removed)
	s.notify(ctx, notify.Cleared(removed))
	s.publish()
	return removed, nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return cloneTask(s.tasks[i]), true
}

// Resolve maps an exact id or a unique id prefix to a full id.
func (s *Store) Resolve(idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", validationError("task id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(idOrPrefix) >= 0 {
		return idOrPrefix, nil
	}
	var match string
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, idOrPrefix) {
			if match != "" {
				return "", validationError("task id prefix " + idOrPrefix + " is ambiguous")
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", notFoundError(idOrPrefix)
	}
	return match, nil
}

// Tasks returns a snapshot of the collection in display order.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Filter(f models.Filter) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.tasks, f)
}

// Stats computes the collection summary at the store clock's current time.
func (s *Store) Stats() models.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.tasks, s.now())
}

// Now exposes the store clock so views compute stats on the same timeline.
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func([]models.Task)) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// commit installs next and writes it. Callers hold s.mu. A failed write
// keeps next in memory.
func (s *Store) commit(ctx context.Context, next []models.Task) error {
	s.tasks = next
	if err := s.persister.Save(ctx, cloneTasks(next)); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *Store) finish(ctx context.Context, t models.Task, err error, ok notify.Notice, msg string) (models.Task, error) {
	if err != nil {
		s.logger.Error("failed to persist tasks", "id", t.ID, "error", err)
		s.notify(ctx, notify.Failed(err))
		s.publish()
		return t, err
	}
	s.logger.Debug(msg, "id", t.ID, "title", t.Title)
	s.notify(ctx, ok)
	s.publish()
	return t, nil
}

func (s *Store) fail(ctx context.Context, err error) error {
	s.logger.Debug("task operation rejected", "error", err)
	s.notify(ctx, notify.Failed(err))
	return err
}

func (s *Store) notify(ctx context.Context, n notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

func (s *Store) publish() {
	snapshot := s.Tasks()

	s.listenersMu.RLock()
	fns := make([]func([]models.Task), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(cloneTasks(snapshot))
	}
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

// sanitize enforces the collection invariants on data read from storage:
// blank titles and repeated ids are dropped and CompletedAt is made to agree
// with Completed.
func sanitize(loaded []models.Task) []models.Task {
	out := make([]models.Task, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))
	for _, t := range loaded {
		t.Title = strings.TrimSpace(t.Title)
		if t.ID == "" || t.Title == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}

		switch {
		case !t.Completed:
			t.CompletedAt = nil
		case t.CompletedAt == nil:
			at := t.CreatedAt
			t.CompletedAt = &at
		}
		out = append(out, cloneTask(t))
	}
	return out
}

func sameTasks(a, b []models.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Title != y.Title || x.Completed != y.Completed || !x.CreatedAt.Equal(y.CreatedAt) {
			return false
		}
		if (x.CompletedAt == nil) != (y.CompletedAt == nil) {
			return false
		}
		if x.CompletedAt != nil && !x.CompletedAt.Equal(*y.CompletedAt) {
			return false
		}
	}
	return true
}

// IsUserError reports whether err is a recoverable validation or lookup
// failure rather than a storage problem.
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}
