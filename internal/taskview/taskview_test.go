package taskview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

func task(title string, opts ...func(*models.Task)) models.Task {
	t := models.NewTask(models.TaskInput{Title: title})
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func due(at time.Time) func(*models.Task) {
	return func(t *models.Task) { t.DueDate = &at }
}

func starred(t *models.Task)   { t.IsStarred = true }
func completed(t *models.Task) { t.Completed = true }

func priority(p models.Priority) func(*models.Task) {
	return func(t *models.Task) { t.Priority = p }
}

func category(c models.Category) func(*models.Task) {
	return func(t *models.Task) { t.Category = c }
}

func describe(d string) func(*models.Task) {
	return func(t *models.Task) { t.Description = d }
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

var now = time.Date(2025, 4, 23, 0, 1, 0, 0, time.FixedZone("UTC-7", -7*3600))

func TestFilterSearch(t *testing.T) {
	tasks := []models.Task{
		task("Buy milk"),
		task("Call plumber", describe("kitchen MILK leak")),
		task("Write report"),
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"Buy milk", "Call plumber", "Write report"}},
		{"milk", []string{"Buy milk", "Call plumber"}},
		{"REPORT", []string{"Write report"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := Filter(tasks, Criteria{Search: tt.search}, now)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilterCompletion(t *testing.T) {
	tasks := []models.Task{task("open"), task("done", completed)}

	assert.Equal(t, []string{"open"}, titles(Filter(tasks, Criteria{}, now)))
	assert.Equal(t, []string{"open", "done"}, titles(Filter(tasks, Criteria{ShowCompleted: true}, now)))
}

func TestFilterSelectors(t *testing.T) {
	tasks := []models.Task{
		task("A", priority(models.PriorityHigh), category(models.CategoryWork)),
		task("B", priority(models.PriorityLow), category(models.CategoryWork), starred),
		task("C", priority(models.PriorityHigh), category(models.CategoryHealth), starred),
	}

	got := Filter(tasks, Criteria{Priority: models.PriorityHigh}, now)
	assert.Equal(t, []string{"A", "C"}, titles(got))

	got = Filter(tasks, Criteria{Category: models.CategoryWork}, now)
	assert.Equal(t, []string{"A", "B"}, titles(got))

	got = Filter(tasks, Criteria{Priority: Any, Category: Any, StarredOnly: true}, now)
	assert.Equal(t, []string{"B", "C"}, titles(got))
}

func TestFilterPredicateOrderDoesNotMatter(t *testing.T) {
	tasks := []models.Task{
		task("A", priority(models.PriorityHigh)),
		task("B", priority(models.PriorityHigh), starred),
		task("C", priority(models.PriorityLow), starred),
		task("D", priority(models.PriorityHigh), starred),
	}

	both := Filter(tasks, Criteria{Priority: models.PriorityHigh, StarredOnly: true}, now)
	priorityThenStar := Filter(Filter(tasks, Criteria{Priority: models.PriorityHigh}, now), Criteria{StarredOnly: true}, now)
	starThenPriority := Filter(Filter(tasks, Criteria{StarredOnly: true}, now), Criteria{Priority: models.PriorityHigh}, now)

	assert.Equal(t, []string{"B", "D"}, titles(both))
	assert.Equal(t, titles(both), titles(priorityThenStar))
	assert.Equal(t, titles(both), titles(starThenPriority))
}

func TestFilterMyDayUsesLocalCalendarDate(t *testing.T) {
	loc := now.Location()
	late := task("late tonight", due(time.Date(2025, 4, 23, 23, 59, 0, 0, loc)))
	tomorrow := task("tomorrow", due(time.Date(2025, 4, 24, 0, 1, 0, 0, loc)))
	doneToday := task("done today", due(time.Date(2025, 4, 23, 12, 0, 0, 0, loc)), completed)
	// same instant as 23:30 local, expressed in UTC on the next calendar day
	utcNextDay := task("utc next day", due(time.Date(2025, 4, 24, 6, 30, 0, 0, time.UTC)))
	undated := task("undated")

	got := Filter([]models.Task{late, tomorrow, doneToday, utcNextDay, undated}, Criteria{Nav: NavMyDay, ShowCompleted: true}, now)
	assert.Equal(t, []string{"late tonight", "utc next day"}, titles(got))
}

func TestFilterNavModes(t *testing.T) {
	tasks := []models.Task{
		task("plain"),
		task("star", starred),
		task("dated", due(now.Add(72*time.Hour))),
	}

	tests := []struct {
		mode NavMode
		want []string
	}{
		{NavAll, []string{"plain", "star", "dated"}},
		{NavAssigned, []string{"plain", "star", "dated"}},
		{NavImportant, []string{"star"}},
		{NavPlanned, []string{"dated"}},
		{NavMyDay, []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Filter(tasks, Criteria{Nav: tt.mode}, now)))
		})
	}
}

func TestParseNavMode(t *testing.T) {
	mode, err := ParseNavMode("planned")
	require.NoError(t, err)
	assert.Equal(t, NavPlanned, mode)

	mode, err = ParseNavMode("")
	require.NoError(t, err)
	assert.Equal(t, NavAll, mode)

	_, err = ParseNavMode("someday")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSortDueDateKeepsUndatedLast(t *testing.T) {
	may := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task("may", due(may)),
		task("none"),
		task("april", due(april)),
	}

	asc := Apply(tasks, Sort{Option: SortDueDate, Ascending: true})
	assert.Equal(t, []string{"april", "may", "none"}, titles(asc))

	desc := Apply(tasks, Sort{Option: SortDueDate, Ascending: false})
	assert.Equal(t, []string{"may", "april", "none"}, titles(desc))
}

func TestSortAlphabetical(t *testing.T) {
	tasks := []models.Task{task("banana"), task("Apple"), task("cherry")}

	got := Apply(tasks, Sort{Option: SortAlphabetical, Ascending: true})
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(got))

	got = Apply(tasks, Sort{Option: SortAlphabetical})
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titles(got))
}

func TestSortImportance(t *testing.T) {
	tasks := []models.Task{
		task("star low", starred, priority(models.PriorityLow)),
		task("low", priority(models.PriorityLow)),
		task("star high", starred, priority(models.PriorityHigh)),
		task("medium", priority(models.PriorityMedium)),
		task("high", priority(models.PriorityHigh)),
	}

	got := Apply(tasks, Sort{Option: SortImportance, Ascending: true})
	assert.Equal(t, []string{"high", "medium", "low", "star high", "star low"}, titles(got))
}

func TestSortAddedToMyDayPutsStarredFirst(t *testing.T) {
	tasks := []models.Task{task("a"), task("b", starred), task("c"), task("d", starred)}

	got := Apply(tasks, Sort{Option: SortAddedToMyDay, Ascending: true})
	assert.Equal(t, []string{"b", "d", "a", "c"}, titles(got))
}

func TestSortCreationDate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := func(offset time.Duration) func(*models.Task) {
		return func(t *models.Task) { t.CreatedAt = base.Add(offset) }
	}
	tasks := []models.Task{task("second", created(time.Hour)), task("third", created(2*time.Hour)), task("first", created(0))}

	got := Apply(tasks, Sort{Option: SortCreationDate, Ascending: true})
	assert.Equal(t, []string{"first", "second", "third"}, titles(got))
}

func TestSortNoneKeepsManualOrder(t *testing.T) {
	tasks := []models.Task{task("c"), task("a"), task("b")}

	for _, asc := range []bool{true, false} {
		got := Apply(tasks, Sort{Option: SortNone, Ascending: asc})
		assert.Equal(t, []string{"c", "a", "b"}, titles(got))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	tasks := []models.Task{task("b"), task("a")}
	Apply(tasks, Sort{Option: SortAlphabetical, Ascending: true})
	assert.Equal(t, []string{"b", "a"}, titles(tasks))
}

func TestOptionNextWraps(t *testing.T) {
	assert.Equal(t, SortImportance, SortNone.Next())
	assert.Equal(t, SortNone, SortCreationDate.Next())
}

func TestProjectGroupsCompleted(t *testing.T) {
	tasks := []models.Task{
		task("one"),
		task("two", completed),
		task("three"),
		task("four", completed),
		task("five"),
	}

	p := Project(tasks, View{}, now)
	assert.Len(t, p.Incomplete, 3)
	assert.Len(t, p.Completed, 2)
	assert.Equal(t, 2, p.CompletedCount())
	assert.Empty(t, p.VisibleCompleted())
	assert.Equal(t, []string{"one", "three", "five"}, titles(p.Rows()))

	expanded := Project(tasks, View{CompletedExpanded: true}, now)
	assert.Equal(t, []string{"two", "four"}, titles(expanded.VisibleCompleted()))
	assert.Equal(t, []string{"one", "three", "five", "two", "four"}, titles(expanded.Rows()))
}

func TestProjectSortsWithinGroups(t *testing.T) {
	tasks := []models.Task{
		task("b"),
		task("z done", completed),
		task("a"),
		task("y done", completed),
	}

	p := Project(tasks, View{Sort: Sort{Option: SortAlphabetical, Ascending: true}, CompletedExpanded: true}, now)
	assert.Equal(t, []string{"a", "b"}, titles(p.Incomplete))
	assert.Equal(t, []string{"y done", "z done"}, titles(p.Completed))
}

func TestProjectIsDeterministic(t *testing.T) {
	tasks := []models.Task{task("b", starred), task("a"), task("c", completed)}
	v := View{Sort: Sort{Option: SortImportance}}

	assert.Equal(t, Project(tasks, v, now), Project(tasks, v, now))
}

func TestNeighbor(t *testing.T) {
	group := []models.Task{task("a"), task("b"), task("c")}

	id, ok := Neighbor(group, group[1].ID, -1)
	require.True(t, ok)
	assert.Equal(t, group[0].ID, id)

	id, ok = Neighbor(group, group[1].ID, 1)
	require.True(t, ok)
	assert.Equal(t, group[2].ID, id)

	_, ok = Neighbor(group, group[0].ID, -1)
	assert.False(t, ok)
	_, ok = Neighbor(group, "missing", 1)
	assert.False(t, ok)
}

func TestGroup(t *testing.T) {
	tasks := []models.Task{task("open"), task("done", completed)}
	p := Project(tasks, View{}, now)

	assert.Len(t, p.Group(tasks[0].ID), 1)
	assert.Nil(t, p.Group(tasks[1].ID), "collapsed group is not displayed")

	p = Project(tasks, View{CompletedExpanded: true}, now)
	assert.Equal(t, []string{"done"}, titles(p.Group(tasks[1].ID)))
}

func TestCounts(t *testing.T) {
	tasks := []models.Task{
		task("today", due(now.Add(2*time.Hour))),
		task("star", starred),
		task("later", due(now.Add(96*time.Hour)), starred),
		task("done", completed, starred),
	}

	n := Counts(tasks, now)
	assert.Equal(t, NavCounts{MyDay: 1, Important: 2, Planned: 2, All: 3}, n)
	assert.Equal(t, 2, n.For(NavPlanned))
	assert.Equal(t, 0, n.For(NavAssigned))
}
