package taskview

import (
	"time"

	"github.com/tgienger/todo/internal/models"
)

// View is everything that shapes the displayed list
type View struct {
	Criteria          Criteria
	Sort              Sort
	CompletedExpanded bool
}

// Projection is the renderable result of a View over the collection
type Projection struct {
	Incomplete []models.Task
	Completed  []models.Task
	Expanded   bool
}

// Project filters, sorts and groups tasks. Completed tasks always go to
// their own group, whatever Criteria.ShowCompleted says; the group is
// hidden until expanded but its size is always known.
func Project(tasks []models.Task, v View, now time.Time) Projection {
	c := v.Criteria
	c.ShowCompleted = true

	ordered := Apply(Filter(tasks, c, now), v.Sort)

	p := Projection{
		Incomplete: []models.Task{},
		Completed:  []models.Task{},
		Expanded:   v.CompletedExpanded,
	}
	for _, t := range ordered {
		if t.Completed {
			p.Completed = append(p.Completed, t)
		} else {
			p.Incomplete = append(p.Incomplete, t)
		}
	}
	return p
}

// CompletedCount is the size of the completed group, expanded or not
func (p Projection) CompletedCount() int {
	return len(p.Completed)
}

// VisibleCompleted returns the completed tasks to render
func (p Projection) VisibleCompleted() []models.Task {
	if !p.Expanded {
		return nil
	}
	return p.Completed
}

// Rows flattens the rendered tasks in display order: open tasks, then the
// completed group when expanded
func (p Projection) Rows() []models.Task {
	rows := make([]models.Task, 0, len(p.Incomplete)+len(p.Completed))
	rows = append(rows, p.Incomplete...)
	return append(rows, p.VisibleCompleted()...)
}

// Group returns the displayed group holding id, or nil
func (p Projection) Group(id string) []models.Task {
	for _, t := range p.Incomplete {
		if t.ID == id {
			return p.Incomplete
		}
	}
	for _, t := range p.VisibleCompleted() {
		if t.ID == id {
			return p.Completed
		}
	}
	return nil
}

// Neighbor returns the id of the task delta rows away from id within group.
// ok is false when id is absent or the neighbour would fall off either end.
func Neighbor(group []models.Task, id string, delta int) (string, bool) {
	for i, t := range group {
		if t.ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(group) || j == i {
			return "", false
		}
		return group[j].ID, true
	}
	return "", false
}

// NavCounts holds the open-task badge counts shown next to each nav mode
type NavCounts struct {
	MyDay     int
	Important int
	Planned   int
	All       int
}

// For returns the count for mode
func (n NavCounts) For(mode NavMode) int {
	switch mode {
	case NavMyDay:
		return n.MyDay
	case NavImportant:
		return n.Important
	case NavPlanned:
		return n.Planned
	case NavAssigned:
		return 0
	default:
		return n.All
	}
}

// Counts tallies open tasks per navigation mode
func Counts(tasks []models.Task, now time.Time) NavCounts {
	var n NavCounts
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		n.All++
		if MatchesNav(t, NavMyDay, now) {
			n.MyDay++
		}
		if t.IsStarred {
			n.Important++
		}
		if t.HasDueDate() {
			n.Planned++
		}
	}
	return n
}
