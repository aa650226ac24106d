package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

var now = time.Date(2025, 4, 23, 9, 0, 0, 0, time.UTC)

func dueIn(title string, d time.Duration) models.Task {
	at := now.Add(d)
	return models.NewTask(models.TaskInput{Title: title, DueDate: &at})
}

func TestDueSoon(t *testing.T) {
	done := dueIn("done", time.Hour)
	done.Completed = true

	tasks := []models.Task{
		dueIn("soon", 30*time.Minute),
		dueIn("edge", 24*time.Hour),
		dueIn("later", 25*time.Hour),
		dueIn("past", -time.Minute),
		done,
		models.NewTask(models.TaskInput{Title: "undated"}),
	}

	got := DueSoon(tasks, now, DefaultWindow)
	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[0].Title)
	assert.Equal(t, "edge", got[1].Title)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		left time.Duration
		want string
	}{
		{90 * time.Second, "in 1 minute"},
		{45 * time.Minute, "in 45 minutes"},
		{time.Hour, "in 1 hour"},
		{5*time.Hour + 59*time.Minute, "in 5 hours"},
		{24 * time.Hour, "in 1 day"},
		{72 * time.Hour, "in 3 days"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(now.Add(tt.left), now))
		})
	}
}

func TestCheckDoesNotRepeatUnread(t *testing.T) {
	c := NewCenter(0, nil)
	tasks := []models.Task{dueIn("Pay rent", 2*time.Hour)}

	first := c.Check(tasks, now)
	require.Len(t, first, 1)
	assert.Equal(t, tasks[0].ID, first[0].TaskID)
	assert.Equal(t, `"Pay rent" is due in 2 hours`, first[0].Message)

	assert.Empty(t, c.Check(tasks, now.Add(time.Minute)))
	assert.Equal(t, 1, c.Unread())

	require.True(t, c.MarkRead(first[0].ID))
	assert.Equal(t, 0, c.Unread())

	again := c.Check(tasks, now.Add(time.Hour))
	require.Len(t, again, 1)
	assert.Len(t, c.List(), 2)
}

func TestClear(t *testing.T) {
	c := NewCenter(time.Hour, nil)
	added := c.Check([]models.Task{dueIn("a", time.Minute), dueIn("b", 2*time.Minute)}, now)
	require.Len(t, added, 2)

	assert.True(t, c.Clear(added[0].ID))
	assert.False(t, c.Clear(added[0].ID))
	assert.Len(t, c.List(), 1)

	c.ClearAll()
	assert.Empty(t, c.List())
	assert.Equal(t, 0, c.Unread())
}

func TestMarkAllRead(t *testing.T) {
	c := NewCenter(0, nil)
	c.Check([]models.Task{dueIn("a", time.Minute), dueIn("b", time.Hour)}, now)

	c.MarkAllRead()
	assert.Equal(t, 0, c.Unread())
	assert.False(t, c.MarkRead("missing"))
}

func TestWatcherChecksImmediatelyAndStops(t *testing.T) {
	c := NewCenter(0, nil)
	batches := make(chan []Notification, 1)
	w := &Watcher{
		Center:   c,
		Snapshot: func() []models.Task { return []models.Task{dueIn("soon", time.Hour)} },
		Interval: time.Hour,
		Now:      func() time.Time { return now },
		OnNotify: func(n []Notification) { batches <- n },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case batch := <-batches:
		assert.Len(t, batch, 1)
	case <-time.After(time.Second):
		t.Fatal("watcher did not check on start")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherChecksOnChange(t *testing.T) {
	c := NewCenter(0, nil)
	changes := make(chan struct{}, 1)
	batches := make(chan []Notification, 2)

	var tasks []models.Task
	var mu sync.Mutex
	w := &Watcher{
		Center: c,
		Snapshot: func() []models.Task {
			mu.Lock()
			defer mu.Unlock()
			return append([]models.Task(nil), tasks...)
		},
		Changes:  changes,
		Interval: time.Hour,
		Now:      func() time.Time { return now },
		OnNotify: func(n []Notification) { batches <- n },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	mu.Lock()
	tasks = []models.Task{dueIn("added later", 3*time.Hour)}
	mu.Unlock()
	changes <- struct{}{}

	select {
	case batch := <-batches:
		require.Len(t, batch, 1)
		assert.Equal(t, "added later", batch[0].Message[1:12])
	case <-time.After(time.Second):
		t.Fatal("watcher did not check after a change")
	}
}
