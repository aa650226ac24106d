package views

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/taskview"
)

// Setting keys persisted through Settings
const (
	SettingNav               = "nav"
	SettingSort              = "sort"
	SettingSortAscending     = "sort_ascending"
	SettingCompletedExpanded = "completed_expanded"
)

const opTimeout = 5 * time.Second

// Settings persists UI preferences
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Deps is what the views need from the rest of the program
type Deps struct {
	Store    *store.Store
	Settings Settings
	Center   *notify.Center
	Logger   *slog.Logger
	// Defaults is the view used until preferences have been saved
	Defaults taskview.View
	// Now defaults to time.Now
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// StoreChanged is delivered after every committed change to the task store
type StoreChanged struct{}

// NotificationsArrived carries reminders raised by the watcher
type NotificationsArrived struct {
	Items []notify.Notification
}

// BackToNav returns to the navigation list
type BackToNav struct{}

// opDoneMsg reports the outcome of a store operation run as a command
type opDoneMsg struct {
	op      string
	err     error
	focusID string
}

// runOp runs fn off the UI loop and reports back with opDoneMsg
func runOp(op, focusID string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{op: op, err: fn(ctx), focusID: focusID}
	}
}

// describeError turns a store error into a status line message
func describeError(op string, err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return op + ": " + err.Error()
	case errors.Is(err, store.ErrCrossGroup):
		return "Tasks can only be moved within their own group"
	case errors.Is(err, models.ErrNotFound):
		return op + ": task no longer exists"
	case errors.Is(err, models.ErrPersistence):
		return op + " failed to save, nothing was changed"
	default:
		return op + ": " + err.Error()
	}
}

// LoadPreferences reads the saved view preferences over defaults. Unknown
// or unreadable values keep the default.
func LoadPreferences(s Settings, defaults taskview.View) taskview.View {
	v := defaults
	if s == nil {
		return v
	}

	if raw, err := s.GetSetting(SettingSort); err == nil && raw != "" {
		if opt, err := taskview.ParseOption(raw); err == nil {
			v.Sort.Option = opt
		}
	}
	if raw, err := s.GetSetting(SettingSortAscending); err == nil && raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			v.Sort.Ascending = b
		}
	}
	if raw, err := s.GetSetting(SettingCompletedExpanded); err == nil && raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			v.CompletedExpanded = b
		}
	}
	return v
}

// SavePreferences stores the parts of v that outlive a session
func SavePreferences(s Settings, v taskview.View) error {
	if s == nil {
		return nil
	}
	if err := s.SetSetting(SettingSort, string(v.Sort.Option)); err != nil {
		return err
	}
	if err := s.SetSetting(SettingSortAscending, strconv.FormatBool(v.Sort.Ascending)); err != nil {
		return err
	}
	return s.SetSetting(SettingCompletedExpanded, strconv.FormatBool(v.CompletedExpanded))
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
