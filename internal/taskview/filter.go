// Package taskview derives what the user sees from the canonical task
// collection: filtering, sorting, and grouping into open and completed tasks.
// Everything here is a pure function of its inputs.
package taskview

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// Any is the selector value that matches every priority or category
const Any = "all"

// NavMode is the coarse sidebar filter
type NavMode string

const (
	NavAll       NavMode = "all"
	NavMyDay     NavMode = "myDay"
	NavImportant NavMode = "important"
	NavPlanned   NavMode = "planned"
	NavAssigned  NavMode = "assigned"
)

// NavModes lists the navigation modes in sidebar order
var NavModes = []NavMode{NavMyDay, NavImportant, NavPlanned, NavAssigned, NavAll}

// Label returns the display name of the mode
func (m NavMode) Label() string {
	switch m {
	case NavMyDay:
		return "My Day"
	case NavImportant:
		return "Important"
	case NavPlanned:
		return "Planned"
	case NavAssigned:
		return "Assigned to me"
	default:
		return "Tasks"
	}
}

// ParseNavMode converts a stored or user-supplied value to a NavMode
func ParseNavMode(s string) (NavMode, error) {
	if s == "" {
		return NavAll, nil
	}
	for _, m := range NavModes {
		if string(m) == s {
			return m, nil
		}
	}
	return NavAll, fmt.Errorf("%w: unknown navigation mode %q", models.ErrValidation, s)
}

// Criteria holds the user-selected filters. The zero value shows only open
// tasks; set ShowCompleted to include completed ones.
type Criteria struct {
	Search        string
	ShowCompleted bool
	Priority      models.Priority
	Category      models.Category
	StarredOnly   bool
	Nav           NavMode
}

// Filter returns the tasks passing every active rule, in their original
// order. now anchors the myDay calendar comparison.
func Filter(tasks []models.Task, c Criteria, now time.Time) []models.Task {
	term := strings.ToLower(c.Search)

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, term) {
			continue
		}
		if !c.ShowCompleted && t.Completed {
			continue
		}
		if !anyValue(string(c.Priority)) && t.Priority != c.Priority {
			continue
		}
		if !anyValue(string(c.Category)) && t.Category != c.Category {
			continue
		}
		if c.StarredOnly && !t.IsStarred {
			continue
		}
		if !MatchesNav(t, c.Nav, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MatchesNav reports whether t belongs to the navigation mode
func MatchesNav(t models.Task, mode NavMode, now time.Time) bool {
	switch mode {
	case NavMyDay:
		return !t.Completed && t.HasDueDate() && SameDay(*t.DueDate, now)
	case NavImportant:
		return t.IsStarred
	case NavPlanned:
		return t.HasDueDate()
	default:
		// all, assigned and unknown modes do not restrict
		return true
	}
}

// SameDay compares calendar dates in ref's location
func SameDay(t, ref time.Time) bool {
	ty, tm, td := t.In(ref.Location()).Date()
	ry, rm, rd := ref.Date()
	return ty == ry && tm == rm && td == rd
}

func matchesSearch(t models.Task, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), term)
}

func anyValue(s string) bool {
	return s == "" || s == Any
}
