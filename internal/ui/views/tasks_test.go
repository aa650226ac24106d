package views

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/jsonstore"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/taskview"
)

var manual = taskview.View{Sort: taskview.Sort{Option: taskview.SortNone, Ascending: true}}

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) { return m[key], nil }

func (m mapSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestView opens a task list over a JSON-backed store holding titles
func newTestView(t *testing.T, defaults taskview.View, titles ...string) (*TaskListView, *store.Store) {
	t.Helper()
	js, err := jsonstore.Open(filepath.Join(t.TempDir(), "tasks.json"), nil)
	require.NoError(t, err)

	st := store.New(js)
	ctx := context.Background()
	require.NoError(t, st.Load(ctx))
	for _, title := range titles {
		_, err := st.Add(ctx, models.TaskInput{Title: title})
		require.NoError(t, err)
	}

	deps := Deps{
		Store:    st,
		Settings: mapSettings{},
		Defaults: defaults,
		Now:      func() time.Time { return time.Date(2025, 4, 23, 9, 0, 0, 0, time.UTC) },
	}
	return NewTaskListView(deps, taskview.NavAll), st
}

// run executes cmd and feeds its message back into v
func run(t *testing.T, v *TaskListView, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func titlesOf(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := mapSettings{}
	want := taskview.View{
		Sort:              taskview.Sort{Option: taskview.SortDueDate, Ascending: false},
		CompletedExpanded: true,
	}
	require.NoError(t, SavePreferences(s, want))

	got := LoadPreferences(s, taskview.View{Sort: taskview.Sort{Option: taskview.SortNone, Ascending: true}})
	assert.Equal(t, want.Sort, got.Sort)
	assert.True(t, got.CompletedExpanded)
}

func TestLoadPreferencesIgnoresUnknownValues(t *testing.T) {
	s := mapSettings{SettingSort: "bogus", SettingSortAscending: "maybe"}
	defaults := taskview.View{Sort: taskview.Sort{Option: taskview.SortImportance, Ascending: true}}
	assert.Equal(t, defaults, LoadPreferences(s, defaults))
	assert.Equal(t, defaults, LoadPreferences(nil, defaults))
}

func TestKeyboardMoveReordersStore(t *testing.T) {
	v, st := newTestView(t, manual, "A", "B", "C")
	require.Equal(t, "A", v.rows[0].Title)

	_, cmd := v.Update(press("J"))
	run(t, v, cmd)

	assert.Equal(t, []string{"B", "A", "C"}, titlesOf(st.Tasks()))
	task, ok := v.current()
	require.True(t, ok)
	assert.Equal(t, "A", task.Title)
}

func TestKeyboardMoveNeedsManualSort(t *testing.T) {
	defaults := taskview.View{Sort: taskview.Sort{Option: taskview.SortAlphabetical, Ascending: true}}
	v, st := newTestView(t, defaults, "B", "A")

	_, cmd := v.Update(press("J"))
	assert.Nil(t, cmd)
	assert.True(t, v.statusErr)
	assert.Equal(t, []string{"B", "A"}, titlesOf(st.Tasks()))
}

func TestToggleCompleteMovesTaskToCompletedGroup(t *testing.T) {
	v, st := newTestView(t, manual, "A", "B")

	_, cmd := v.Update(press("x"))
	run(t, v, cmd)

	got, err := st.Get(v.projection.Completed[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"B"}, titlesOf(v.rows))

	v.Update(press("c"))
	assert.Equal(t, []string{"B", "A"}, titlesOf(v.rows))
	assert.Equal(t, "true", v.deps.Settings.(mapSettings)[SettingCompletedExpanded])
}

func TestSortKeyCyclesAndPersists(t *testing.T) {
	v, _ := newTestView(t, manual)

	v.Update(press("o"))
	assert.Equal(t, taskview.SortImportance, v.ViewState().Sort.Option)
	assert.Equal(t, string(taskview.SortImportance), v.deps.Settings.(mapSettings)[SettingSort])
}

func TestEditFormStaysOpenUntilSaved(t *testing.T) {
	v, st := newTestView(t, manual)
	save := tea.KeyMsg{Type: tea.KeyCtrlS}

	v.Update(press("n"))
	require.True(t, v.editing)

	_, cmd := v.Update(save)
	run(t, v, cmd)
	assert.True(t, v.editing, "a rejected save keeps the form")
	assert.True(t, v.statusErr)
	assert.Empty(t, st.Tasks())

	v.Update(press("Buy milk"))
	_, cmd = v.Update(save)
	run(t, v, cmd)
	assert.False(t, v.editing)
	assert.Equal(t, []string{"Buy milk"}, titlesOf(st.Tasks()))
}
