package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgienger/todo/internal/models"
)

// ErrCrossGroup is returned when a drag would carry a task from the open
// group into the completed group or back. Such drops are ignored.
var ErrCrossGroup = errors.New("cannot move a task across the open/completed groups")

// Move handles a drag in the displayed list: the task draggedID was dropped
// onto the slot held by targetID. Both ids are resolved to canonical indices
// at call time and a single Reorder is applied, so tasks hidden by the
// current filter keep their relative order.
//
// If either id is unknown nothing changes and ErrNotFound is returned.
func (s *Store) Move(ctx context.Context, draggedID, targetID string) error {
	if draggedID == targetID {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	src, dst, err := s.resolveMove(draggedID, targetID)
	if err != nil {
		return err
	}
	return s.reorder(ctx, src, dst)
}

// resolveMove looks up both endpoints in the canonical collection
func (s *Store) resolveMove(draggedID, targetID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.indexOf(draggedID)
	if src < 0 {
		return 0, 0, fmt.Errorf("%w: dragged task %s", models.ErrNotFound, draggedID)
	}
	dst := s.indexOf(targetID)
	if dst < 0 {
		return 0, 0, fmt.Errorf("%w: drop target %s", models.ErrNotFound, targetID)
	}
	if s.tasks[src].Completed != s.tasks[dst].Completed {
		return 0, 0, ErrCrossGroup
	}
	return src, dst, nil
}
