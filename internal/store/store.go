// Package store owns the canonical, manually ordered task collection.
//
// Every mutation is written through the Gateway first and committed to memory
// only once the gateway call succeeds, so the in-memory collection always
// matches the last successful write. Mutations are serialized by a write lock
// held across the gateway call; readers get copies and never block on I/O.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tgienger/todo/internal/models"
)

// Gateway is the persistence backend the store writes through
type Gateway interface {
	GetAll(ctx context.Context) ([]models.Task, error)
	Add(ctx context.Context, in models.TaskInput) (models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	SaveOrder(ctx context.Context, ids []string) error
}

// CompletionFunc observes tasks that just moved from open to completed
type CompletionFunc func(models.Task)

// Store is the single source of truth for the task collection
type Store struct {
	gw     Gateway
	logger *slog.Logger

	writeMu sync.Mutex

	mu          sync.RWMutex
	tasks       []models.Task
	loaded      bool
	onComplete  []CompletionFunc
	subscribers []chan struct{}
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty, not yet loaded store over gw
func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:     gw,
		logger: slog.Default(),
		tasks:  []models.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnComplete registers fn to run after a task is toggled to completed.
// fn runs on the caller's goroutine and may call back into the store.
func (s *Store) OnComplete(fn CompletionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
}

// Subscribe returns a channel that receives a signal after every committed
// change. Signals are coalesced; a slow reader only misses duplicates.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Load replaces the collection with the gateway contents
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tasks, err := s.gw.GetAll(ctx)
	if err != nil {
		s.logger.Error("load tasks", "error", err)
		return persistenceErr("load", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	s.commit(func() {
		s.tasks = tasks
		s.loaded = true
	})
	s.logger.Info("tasks loaded", "count", len(tasks))
	return nil
}

// Loaded reports whether the initial load has completed
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Tasks returns a copy of the canonical collection in manual order
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns a task by id
func (s *Store) Get(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], nil
	}
	return models.Task{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
}

// Add validates input, persists a new task and appends it
func (s *Store) Add(ctx context.Context, in models.TaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return models.Task{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	task, err := s.gw.Add(ctx, in)
	if err != nil {
		s.logger.Error("add task", "error", err)
		return models.Task{}, persistenceErr("add", err)
	}

	s.commit(func() {
		s.tasks = append(s.tasks, task)
	})
	s.logger.Debug("task added", "id", task.ID)
	return task, nil
}

// Update persists a full replacement of an existing task and swaps it in
// place
func (s *Store) Update(ctx context.Context, task models.Task) (models.Task, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	saved, _, err := s.update(ctx, task)
	return saved, err
}

// Delete persists the removal of a task, then drops it from the collection
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.Get(id); err != nil {
		return err
	}

	removed, err := s.gw.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete task", "id", id, "error", err)
		return persistenceErr("delete", err)
	}
	if !removed {
		s.logger.Warn("task missing from backend", "id", id)
	}

	s.commit(func() {
		kept := make([]models.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
	})
	s.logger.Debug("task deleted", "id", id)
	return nil
}

// ToggleComplete flips the completed flag. Completion observers run only on
// the open-to-completed transition, after the write lock is released.
func (s *Store) ToggleComplete(ctx context.Context, id string) (models.Task, error) {
	saved, observers, err := s.toggleComplete(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if saved.Completed {
		for _, fn := range observers {
			fn(saved)
		}
	}
	return saved, nil
}

func (s *Store) toggleComplete(ctx context.Context, id string) (models.Task, []CompletionFunc, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return models.Task{}, nil, err
	}
	current.Completed = !current.Completed
	return s.update(ctx, current)
}

// ToggleStar flips the starred flag
func (s *Store) ToggleStar(ctx context.Context, id string) (models.Task, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return models.Task{}, err
	}
	current.IsStarred = !current.IsStarred

	saved, _, err := s.update(ctx, current)
	return saved, err
}

// Reorder moves the task at canonical index src to canonical index dst
// (remove then insert, not swap) and persists the resulting order as a batch
func (s *Store) Reorder(ctx context.Context, src, dst int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.reorder(ctx, src, dst)
}

// update must be called with writeMu held. It returns the completion
// observers registered at commit time.
func (s *Store) update(ctx context.Context, task models.Task) (models.Task, []CompletionFunc, error) {
	task.Title = strings.TrimSpace(task.Title)
	if err := task.Validate(); err != nil {
		return models.Task{}, nil, err
	}

	existing, err := s.Get(task.ID)
	if err != nil {
		return models.Task{}, nil, err
	}
	if !existing.CreatedAt.Equal(task.CreatedAt) {
		return models.Task{}, nil, fmt.Errorf("%w: createdAt is immutable", models.ErrValidation)
	}

	saved, err := s.gw.Update(ctx, task)
	if err != nil {
		s.logger.Error("update task", "id", task.ID, "error", err)
		return models.Task{}, nil, persistenceErr("update", err)
	}

	var observers []CompletionFunc
	s.commit(func() {
		if i := s.indexOf(saved.ID); i >= 0 {
			s.tasks[i] = saved
		}
		observers = append(observers, s.onComplete...)
	})
	return saved, observers, nil
}

// reorder must be called with writeMu held
func (s *Store) reorder(ctx context.Context, src, dst int) error {
	current := s.Tasks()
	if src < 0 || src >= len(current) || dst < 0 || dst >= len(current) {
		return fmt.Errorf("%w: reorder %d -> %d out of range [0,%d)", models.ErrValidation, src, dst, len(current))
	}
	if src == dst {
		return nil
	}

	next := arrayMove(current, src, dst)
	ids := make([]string, len(next))
	for i, t := range next {
		ids[i] = t.ID
	}
	if err := s.gw.SaveOrder(ctx, ids); err != nil {
		s.logger.Error("save order", "error", err)
		return persistenceErr("reorder", err)
	}

	s.commit(func() {
		s.tasks = next
	})
	s.logger.Debug("tasks reordered", "from", src, "to", dst)
	return nil
}

// commit applies fn under the state lock and wakes subscribers
func (s *Store) commit(fn func()) {
	s.mu.Lock()
	fn()
	subs := s.subscribers
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// indexOf must be called with mu held
func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// arrayMove returns a copy of tasks with the element at src removed and
// reinserted at dst
func arrayMove(tasks []models.Task, src, dst int) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	moved := tasks[src]
	for i, t := range tasks {
		if i != src {
			out = append(out, t)
		}
	}
	out = append(out, models.Task{})
	copy(out[dst+1:], out[dst:])
	out[dst] = moved
	return out
}

func persistenceErr(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", models.ErrPersistence, op, err)
}
