// Package jsonstore keeps tasks in a single JSON document on disk. Every
// write goes through a temp file and an atomic rename, and the previous
// document is kept as a rotating backup.
package jsonstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tgienger/todo/internal/models"
)

// Store is a file-backed persistence gateway
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	state fileState
}

// Open loads the document at path, recovering from a backup if the file is
// corrupt
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	state, msg, err := openState(path)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		logger.Warn("state file recovered", "path", path, "detail", msg)
	}

	return &Store{path: path, logger: logger, state: state}, nil
}

// Path returns the document location
func (s *Store) Path() string {
	return s.path
}

// GetAll returns every task in stored order
func (s *Store) GetAll(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Task, len(s.state.Tasks))
	copy(out, s.state.Tasks)
	return out, nil
}

// Add builds a task from input and appends it to the document
func (s *Store) Add(ctx context.Context, in models.TaskInput) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	t := models.NewTask(in)

	err := s.mutate(func(st *fileState) error {
		st.Tasks = append(st.Tasks, t)
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update replaces a stored task. The stored creation time is kept.
func (s *Store) Update(ctx context.Context, t models.Task) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	var saved models.Task
	err := s.mutate(func(st *fileState) error {
		for i := range st.Tasks {
			if st.Tasks[i].ID == t.ID {
				t.CreatedAt = st.Tasks[i].CreatedAt
				st.Tasks[i] = t
				saved = t
				return nil
			}
		}
		return fmt.Errorf("%w: %s", models.ErrNotFound, t.ID)
	})
	if err != nil {
		return models.Task{}, err
	}
	return saved, nil
}

// Delete removes a task and reports whether it existed
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	removed := false
	err := s.mutate(func(st *fileState) error {
		kept := make([]models.Task, 0, len(st.Tasks))
		for _, t := range st.Tasks {
			if t.ID == id {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		st.Tasks = kept
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// SaveOrder rewrites the document so tasks appear in the order of ids.
// Tasks missing from ids keep their relative order after the listed ones.
func (s *Store) SaveOrder(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.mutate(func(st *fileState) error {
		byID := make(map[string]models.Task, len(st.Tasks))
		for _, t := range st.Tasks {
			byID[t.ID] = t
		}

		ordered := make([]models.Task, 0, len(st.Tasks))
		placed := make(map[string]bool, len(ids))
		for _, id := range ids {
			if t, ok := byID[id]; ok && !placed[id] {
				ordered = append(ordered, t)
				placed[id] = true
			}
		}
		for _, t := range st.Tasks {
			if !placed[t.ID] {
				ordered = append(ordered, t)
			}
		}
		st.Tasks = ordered
		return nil
	})
}

// GetSetting retrieves a setting value by key
func (s *Store) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings[key], nil
}

// SetSetting sets a setting value
func (s *Store) SetSetting(key, value string) error {
	return s.mutate(func(st *fileState) error {
		st.Settings[key] = value
		return nil
	})
}

// mutate applies fn to a copy of the state, saves it, and only then makes it
// current
func (s *Store) mutate(fn func(*fileState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := saveState(s.path, next); err != nil {
		s.logger.Error("autosave failed", "path", s.path, "error", err)
		return err
	}
	s.state = next
	return nil
}
