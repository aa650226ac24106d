// Package notify raises reminders for open tasks that fall due soon.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/todo/internal/models"
)

const (
	DefaultWindow   = 24 * time.Hour
	DefaultInterval = time.Hour
)

// Notification is a single due-soon reminder
type Notification struct {
	ID        string
	TaskID    string
	Title     string
	Message   string
	Timestamp time.Time
	Read      bool
}

// DueSoon returns the open tasks due after now and no later than now+window
func DueSoon(tasks []models.Task, now time.Time, window time.Duration) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Completed || !t.HasDueDate() {
			continue
		}
		left := t.DueDate.Sub(now)
		if left > 0 && left <= window {
			out = append(out, t)
		}
	}
	return out
}

// FormatRemaining renders the time until due as "in N minutes", "in N hours"
// or "in N days"
func FormatRemaining(due, now time.Time) string {
	left := due.Sub(now)
	hours := int(left / time.Hour)
	switch {
	case hours < 1:
		return "in " + plural(int(left/time.Minute), "minute")
	case hours < 24:
		return "in " + plural(hours, "hour")
	default:
		return "in " + plural(hours/24, "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Center holds the notification list. It is safe for concurrent use.
type Center struct {
	window time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	items []Notification
}

// NewCenter creates a center that reminds about tasks due within window
func NewCenter(window time.Duration, logger *slog.Logger) *Center {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{window: window, logger: logger}
}

// Check scans tasks and records a notification for every task due soon that
// has no unread notification yet. It returns the notifications it added.
func (c *Center) Check(tasks []models.Task, now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make(map[string]bool, len(c.items))
	for _, n := range c.items {
		if !n.Read {
			pending[n.TaskID] = true
		}
	}

	var added []Notification
	for _, t := range DueSoon(tasks, now, c.window) {
		if pending[t.ID] {
			continue
		}
		n := Notification{
			ID:        uuid.NewString(),
			TaskID:    t.ID,
			Title:     "Upcoming Task",
			Message:   fmt.Sprintf("%q is due %s", t.Title, FormatRemaining(*t.DueDate, now)),
			Timestamp: now,
		}
		c.items = append(c.items, n)
		added = append(added, n)
	}

	if len(added) > 0 {
		c.logger.Info("due-soon notifications raised", "count", len(added))
	}
	return added
}

// List returns a copy of every notification, oldest first
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Unread counts notifications not yet marked read
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead marks a notification read and reports whether it existed
func (c *Center) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification read
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Read = true
	}
}

// Clear removes a notification and reports whether it existed
func (c *Center) Clear(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll removes every notification
func (c *Center) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
