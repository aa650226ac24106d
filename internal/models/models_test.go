package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskFillsDefaults(t *testing.T) {
	before := time.Now()
	task := NewTask(TaskInput{Title: "  Buy milk  "})
	after := time.Now()

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.False(t, task.IsStarred)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, CategoryOther, task.Category)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.CreatedAt.Before(before))
	assert.False(t, task.CreatedAt.After(after))
}

func TestNewTaskKeepsExplicitFields(t *testing.T) {
	due := time.Date(2025, 4, 23, 18, 0, 0, 0, time.UTC)
	task := NewTask(TaskInput{
		Title:       "Dentist",
		Description: "bring card",
		DueDate:     &due,
		Priority:    PriorityHigh,
		Category:    CategoryHealth,
	})

	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, CategoryHealth, task.Category)
	assert.Equal(t, "bring card", task.Description)

	// the factory copies the due date instead of aliasing the caller's value
	due = due.Add(time.Hour)
	assert.False(t, task.DueDate.Equal(due))
}

func TestNewTaskIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewTask(TaskInput{Title: "x"}).ID
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTaskInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   TaskInput
		wantErr bool
	}{
		{"plain title", TaskInput{Title: "Write report"}, false},
		{"empty title", TaskInput{Title: ""}, true},
		{"whitespace title", TaskInput{Title: "   \t"}, true},
		{"unknown priority", TaskInput{Title: "x", Priority: "urgent"}, true},
		{"unknown category", TaskInput{Title: "x", Category: "hobby"}, true},
		{"explicit enums", TaskInput{Title: "x", Priority: PriorityLow, Category: CategoryWork}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskValidateRequiresTitle(t *testing.T) {
	task := NewTask(TaskInput{Title: "ok"})
	require.NoError(t, task.Validate())

	task.Title = " "
	assert.ErrorIs(t, task.Validate(), ErrValidation)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("none").Valid())
	assert.True(t, CategoryShopping.Valid())
	assert.False(t, Category("misc").Valid())
}

func TestTaskJSONKeepsTimestamps(t *testing.T) {
	due := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	task := NewTask(TaskInput{Title: "Pay rent", DueDate: &due})

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var got Task
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.CreatedAt.Equal(task.CreatedAt))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
}

func TestParseDue(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*60*60)

	got, err := ParseDue("", loc)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDue("2025-04-23 15:04", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 23, 15, 4, 0, 0, loc), *got)

	got, err = ParseDue("2025-04-23", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 23, 23, 59, 0, 0, loc), *got)
	assert.Equal(t, "2025-04-23 23:59", FormatDue(got))

	_, err = ParseDue("tomorrow", loc)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDueEndOfDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks spring forward on the first date and fall back on the second
	for _, day := range []string{"2025-03-09", "2025-11-02"} {
		t.Run(day, func(t *testing.T) {
			got, err := ParseDue(day, ny)
			require.NoError(t, err)
			assert.Equal(t, day+" 23:59", FormatDue(got))
			assert.Equal(t, ny, got.Location())
		})
	}
}

func TestLongTextIsValid(t *testing.T) {
	in := TaskInput{Title: strings.Repeat("a", 5000), Description: strings.Repeat("b", 20000)}
	require.NoError(t, in.Validate())
	require.NoError(t, NewTask(in).Validate())
}
