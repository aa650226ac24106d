package models

import (
	"fmt"
	"time"
)

const (
	dueLayout     = "2006-01-02 15:04"
	dueDateLayout = "2006-01-02"
)

// ParseDue reads a due date typed by the user. An empty string means no due
// date; a bare date means the end of that day.
func ParseDue(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dueLayout, s, loc); err == nil {
		return &t, nil
	}
	if d, err := time.ParseInLocation(dueDateLayout, s, loc); err == nil {
		y, m, day := d.Date()
		t := time.Date(y, m, day, 23, 59, 0, 0, loc)
		return &t, nil
	}
	return nil, fmt.Errorf("%w: due date must look like 2025-04-23 or 2025-04-23 15:04", ErrValidation)
}

// FormatDue renders a due date in the layout ParseDue accepts
func FormatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dueLayout)
}
