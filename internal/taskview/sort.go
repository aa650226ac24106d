package taskview

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/models"
)

// Option selects the sort key
type Option string

const (
	SortImportance   Option = "importance"
	SortDueDate      Option = "dueDate"
	SortAddedToMyDay Option = "addedToMyDay"
	SortAlphabetical Option = "alphabetically"
	SortCreationDate Option = "creationDate"
	SortNone         Option = "none"
)

// Options lists sort options in the order the UI cycles through them
var Options = []Option{SortNone, SortImportance, SortDueDate, SortAddedToMyDay, SortAlphabetical, SortCreationDate}

// Label returns the display name of the option
func (o Option) Label() string {
	switch o {
	case SortImportance:
		return "Importance"
	case SortDueDate:
		return "Due date"
	case SortAddedToMyDay:
		return "Added to My Day"
	case SortAlphabetical:
		return "Alphabetically"
	case SortCreationDate:
		return "Creation date"
	default:
		return "Manual"
	}
}

// Next returns the option after o in Options, wrapping around
func (o Option) Next() Option {
	i := slices.Index(Options, o)
	return Options[(i+1)%len(Options)]
}

// ParseOption converts a stored or user-supplied value to an Option
func ParseOption(s string) (Option, error) {
	if s == "" {
		return SortNone, nil
	}
	for _, o := range Options {
		if string(o) == s {
			return o, nil
		}
	}
	return SortNone, fmt.Errorf("%w: unknown sort option %q", models.ErrValidation, s)
}

// Sort is a sort option plus direction
type Sort struct {
	Option    Option
	Ascending bool
}

// Apply returns a newly ordered copy of tasks. Ordering is stable, so tasks
// the option does not tell apart keep their incoming order. Descending
// reverses the result, except that undated tasks stay last under SortDueDate
// and SortNone ignores direction altogether.
func Apply(tasks []models.Task, s Sort) []models.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []models.Task{}
	}

	switch s.Option {
	case SortImportance:
		slices.SortStableFunc(out, compareImportance)
	case SortDueDate:
		return sortByDueDate(out, s.Ascending)
	case SortAddedToMyDay:
		// no separate "added to my day" attribute; starred stands in
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return compareBool(b.IsStarred, a.IsStarred)
		})
	case SortAlphabetical:
		col := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortCreationDate:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	default:
		return out
	}

	if !s.Ascending {
		slices.Reverse(out)
	}
	return out
}

// compareImportance puts non-starred tasks first, then orders by priority
// rank (high, medium, low)
func compareImportance(a, b models.Task) int {
	if c := compareBool(a.IsStarred, b.IsStarred); c != 0 {
		return c
	}
	return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
}

func sortByDueDate(tasks []models.Task, ascending bool) []models.Task {
	dated := make([]models.Task, 0, len(tasks))
	var undated []models.Task
	for _, t := range tasks {
		if t.HasDueDate() {
			dated = append(dated, t)
		} else {
			undated = append(undated, t)
		}
	}

	slices.SortStableFunc(dated, func(a, b models.Task) int {
		return a.DueDate.Compare(*b.DueDate)
	})
	if !ascending {
		slices.Reverse(dated)
	}
	return append(dated, undated...)
}

// compareBool orders false before true
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
