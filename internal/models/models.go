package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority, highest first
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities for sorting: High(0) < Medium(1) < Low(2)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p.Rank() < 3
}

// Category groups tasks by area of life
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryShopping, CategoryHealth, CategoryOther}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Task represents a single task
type Task struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority" validate:"oneof=low medium high"`
	Category    Category   `json:"category" validate:"oneof=personal work shopping health other"`
	IsStarred   bool       `json:"isStarred"`
}

// HasDueDate reports whether the task carries a due date
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// TaskInput holds the caller-supplied fields for a new task.
// Empty Priority and Category fall back to the defaults.
type TaskInput struct {
	Title       string `validate:"notblank"`
	Description string
	DueDate     *time.Time
	Priority    Priority `validate:"omitempty,oneof=low medium high"`
	Category    Category `validate:"omitempty,oneof=personal work shopping health other"`
}

// NewTask builds a task from input, assigning an id and creation time and
// filling defaults for omitted fields
func NewTask(in TaskInput) Task {
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	category := in.Category
	if category == "" {
		category = CategoryOther
	}

	var due *time.Time
	if in.DueDate != nil && !in.DueDate.IsZero() {
		d := *in.DueDate
		due = &d
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Completed:   false,
		CreatedAt:   time.Now(),
		DueDate:     due,
		Priority:    priority,
		Category:    category,
		IsStarred:   false,
	}
}
