package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/taskview"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusFilterDropdown
	FocusTaskList
)

// edit form fields, in tab order
const (
	editFieldTitle = iota
	editFieldDesc
	editFieldDue
	editFieldPriority
	editFieldCategory
	editFieldSave
	editFieldCount
)

type filterOption struct {
	label  string
	color  lipgloss.Color
	apply  func(*taskview.Criteria)
	active func(taskview.Criteria) bool
}

func buildFilterOptions() []filterOption {
	opts := []filterOption{{
		label: "All tasks",
		color: styles.Current.ForegroundDim,
		apply: func(c *taskview.Criteria) {
			c.Priority = ""
			c.Category = ""
			c.StarredOnly = false
		},
		active: func(c taskview.Criteria) bool {
			return (c.Priority == "" || c.Priority == taskview.Any) &&
				(c.Category == "" || c.Category == taskview.Any) && !c.StarredOnly
		},
	}}
	for _, p := range models.Priorities {
		p := p
		opts = append(opts, filterOption{
			label:  "Priority: " + string(p),
			color:  styles.PriorityColor(p),
			apply:  func(c *taskview.Criteria) { c.Priority = p },
			active: func(c taskview.Criteria) bool { return c.Priority == p },
		})
	}
	for _, cat := range models.Categories {
		cat := cat
		opts = append(opts, filterOption{
			label:  "Category: " + string(cat),
			color:  styles.CategoryColor(cat),
			apply:  func(c *taskview.Criteria) { c.Category = cat },
			active: func(c taskview.Criteria) bool { return c.Category == cat },
		})
	}
	return append(opts, filterOption{
		label:  "Starred only",
		color:  styles.Current.Warning,
		apply:  func(c *taskview.Criteria) { c.StarredOnly = !c.StarredOnly },
		active: func(c taskview.Criteria) bool { return c.StarredOnly },
	})
}

// TaskListView shows the projected task list for one navigation mode
type TaskListView struct {
	deps   Deps
	styles *styles.Styles
	keys   keys.KeyMap
	help   help.Model

	width  int
	height int

	view       taskview.View
	projection taskview.Projection
	rows       []models.Task

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Filter dropdown state
	filterOptions []filterOption
	filterOpen    bool
	filterCursor  int

	// Task creation/editing
	editing      bool
	editingNew   bool
	editID       string
	editTitle    textinput.Model
	editDesc     textarea.Model
	editDue      textinput.Model
	editPriority models.Priority
	editCategory models.Category
	editFocusIdx int

	// Read-only detail view
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Reminder panel
	showingNotifications bool
	notifyCursor         int

	status    string
	statusErr bool

	showHelpPopup bool
}

// NewTaskListView creates the task list for mode, restoring saved view
// preferences
func NewTaskListView(deps Deps, mode taskview.NavMode) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 0

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 0
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD [HH:MM]"
	editDue.CharLimit = 16

	h := help.New()
	h.Styles.ShortKey = s.HelpKey
	h.Styles.ShortDesc = s.HelpDesc
	h.Styles.FullKey = s.HelpKey
	h.Styles.FullDesc = s.HelpDesc

	view := LoadPreferences(deps.Settings, deps.Defaults)
	view.Criteria.Nav = mode

	v := &TaskListView{
		deps:          deps,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		help:          h,
		view:          view,
		focus:         FocusTaskList,
		searchInput:   search,
		filterOptions: buildFilterOptions(),
		editTitle:     editTitle,
		editDesc:      editDesc,
		editDue:       editDue,
	}
	v.refresh()
	return v
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// ViewState returns the current filter, sort and grouping
func (v *TaskListView) ViewState() taskview.View {
	return v.view
}

// refresh recomputes the projection, keeping the cursor on the same task
// when it is still displayed
func (v *TaskListView) refresh() {
	selected := ""
	if v.cursor < len(v.rows) {
		selected = v.rows[v.cursor].ID
	}

	v.projection = taskview.Project(v.deps.Store.Tasks(), v.view, v.deps.now())
	v.rows = v.projection.Rows()
	v.selectID(selected)
}

func (v *TaskListView) selectID(id string) {
	if id != "" {
		for i, t := range v.rows {
			if t.ID == id {
				v.cursor = i
				v.ensureVisible()
				return
			}
		}
	}
	if v.cursor >= len(v.rows) {
		v.cursor = max(0, len(v.rows)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) current() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return models.Task{}, false
	}
	return v.rows[v.cursor], true
}

func (v *TaskListView) setStatus(msg string, isErr bool) {
	v.status = msg
	v.statusErr = isErr
}

func (v *TaskListView) savePreferences() {
	if err := SavePreferences(v.deps.Settings, v.view); err != nil {
		v.deps.logger().Warn("save view preferences", "error", err)
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		v.help.Width = contentWidth
		v.ensureVisible()
		return v, nil

	case StoreChanged:
		v.refresh()
		return v, nil

	case NotificationsArrived:
		if len(msg.Items) == 1 {
			v.setStatus(msg.Items[0].Message, false)
		} else if len(msg.Items) > 1 {
			v.setStatus(fmt.Sprintf("%d tasks are due soon", len(msg.Items)), false)
		}
		return v, nil

	case opDoneMsg:
		if isFormOp(msg.op) && msg.err == nil {
			v.editing = false
		}
		if msg.err != nil {
			v.deps.logger().Warn("task operation failed", "op", msg.op, "error", msg.err)
			v.setStatus(describeError(msg.op, msg.err), true)
		} else if v.statusErr {
			v.setStatus("", false)
		}
		v.refresh()
		if msg.focusID != "" {
			v.selectID(msg.focusID)
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.showingNotifications {
			return v.updateNotifications(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.filterOpen {
			return v.updateFilterDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.view.Criteria.Search = strings.TrimSpace(v.searchInput.Value())
			v.refresh()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.view.Criteria.Search != "" {
			v.searchInput.Reset()
			v.view.Criteria.Search = ""
			v.refresh()
			return v, nil
		}
		return v, func() tea.Msg { return BackToNav{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.MoveUp):
		return v, v.moveSelected(-1)

	case key.Matches(msg, v.keys.MoveDown):
		return v, v.moveSelected(1)

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.rows)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, func() tea.Msg { return BackToNav{} }
		case FocusFilterDropdown:
			v.filterOpen = true
			v.filterCursor = 0
			return v, nil
		case FocusTaskList:
			if len(v.rows) > 0 {
				v.viewingTask = true
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.current(); ok && v.focus == FocusTaskList {
			return v, v.toggleComplete(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Star):
		if task, ok := v.current(); ok && v.focus == FocusTaskList {
			return v, v.toggleStar(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.current(); ok && v.focus == FocusTaskList {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.current(); ok && v.focus == FocusTaskList {
			v.askDelete(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusFilterDropdown
		v.filterOpen = true
		v.filterCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		v.view.Sort.Option = v.view.Sort.Option.Next()
		v.savePreferences()
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Reverse):
		v.view.Sort.Ascending = !v.view.Sort.Ascending
		v.savePreferences()
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		v.view.CompletedExpanded = !v.view.CompletedExpanded
		v.savePreferences()
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Notifications):
		if v.deps.Center != nil {
			v.showingNotifications = true
			v.notifyCursor = 0
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// moveSelected drags the selected task onto its displayed neighbour
func (v *TaskListView) moveSelected(delta int) tea.Cmd {
	task, ok := v.current()
	if !ok || v.focus != FocusTaskList {
		return nil
	}
	if v.view.Sort.Option != taskview.SortNone {
		v.setStatus("Switch the sort to Manual to reorder tasks", true)
		return nil
	}

	target, ok := taskview.Neighbor(v.projection.Group(task.ID), task.ID, delta)
	if !ok {
		return nil
	}
	st := v.deps.Store
	return runOp("Move", task.ID, func(ctx context.Context) error {
		return st.Move(ctx, task.ID, target)
	})
}

func (v *TaskListView) toggleComplete(task models.Task) tea.Cmd {
	st := v.deps.Store
	return runOp("Complete", task.ID, func(ctx context.Context) error {
		_, err := st.ToggleComplete(ctx, task.ID)
		return err
	})
}

func (v *TaskListView) toggleStar(task models.Task) tea.Cmd {
	st := v.deps.Store
	return runOp("Star", task.ID, func(ctx context.Context) error {
		_, err := st.ToggleStar(ctx, task.ID)
		return err
	})
}

func (v *TaskListView) askDelete(task models.Task) {
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Title
}

func (v *TaskListView) updateFilterDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.filterOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.filterCursor > 0 {
			v.filterCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.filterCursor < len(v.filterOptions)-1 {
			v.filterCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.filterOptions[v.filterCursor].apply(&v.view.Criteria)
		v.filterOpen = false
		v.refresh()
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewingTask = false
		id := v.deleteTargetID
		st := v.deps.Store
		return v, runOp("Delete", "", func(ctx context.Context) error {
			return st.Delete(ctx, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.current()
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(task)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.askDelete(task)
		return v, nil
	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggleComplete(task)
	case key.Matches(msg, v.keys.Star):
		return v, v.toggleStar(task)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateNotifications(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := v.deps.Center.List()

	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Notifications):
		v.showingNotifications = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.notifyCursor > 0 {
			v.notifyCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.notifyCursor < len(items)-1 {
			v.notifyCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.notifyCursor < len(items) {
			n := items[v.notifyCursor]
			v.deps.Center.MarkRead(n.ID)
			// jump to the task when it is displayed
			for i, t := range v.rows {
				if t.ID == n.TaskID {
					v.cursor = i
					v.ensureVisible()
					v.showingNotifications = false
					break
				}
			}
		}
		return v, nil

	case msg.String() == "a":
		v.deps.Center.MarkAllRead()
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.notifyCursor < len(items) {
			v.deps.Center.Clear(items[v.notifyCursor].ID)
			if v.notifyCursor > 0 && v.notifyCursor >= len(items)-1 {
				v.notifyCursor--
			}
		}
		return v, nil

	case msg.String() == "D":
		v.deps.Center.ClearAll()
		v.notifyCursor = 0
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % editFieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + editFieldCount - 1) % editFieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case editFieldTitle, editFieldDue, editFieldPriority, editFieldCategory:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		case editFieldSave:
			return v, v.saveTask()
		}
		// enter in the description adds a newline

	case msg.String() == "left", msg.String() == "right", msg.String() == " ":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch v.editFocusIdx {
		case editFieldPriority:
			v.editPriority = cycle(models.Priorities, v.editPriority, step)
			return v, nil
		case editFieldCategory:
			v.editCategory = cycle(models.Categories, v.editCategory, step)
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case editFieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case editFieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case editFieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

// isFormOp reports whether op was submitted by the edit form
func isFormOp(op string) bool {
	return op == "Add" || op == "Update"
}

func cycle[T comparable](values []T, current T, step int) T {
	i := 0
	for j, val := range values {
		if val == current {
			i = j
			break
		}
	}
	return values[(i+step+len(values))%len(values)]
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + 4) % 4)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

// visibleItems is how many two-line task items fit on screen
func (v *TaskListView) visibleItems() int {
	availableHeight := max(v.height-14, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
	v.scrollY = max(0, v.scrollY)
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editID = ""
	v.editFocusIdx = editFieldTitle
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editPriority = models.PriorityMedium
	v.editCategory = models.CategoryOther
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editID = task.ID
	v.editFocusIdx = editFieldTitle
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editDue.SetValue(models.FormatDue(task.DueDate))
	v.editPriority = task.Priority
	v.editCategory = task.Category
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case editFieldTitle:
		v.editTitle.Focus()
	case editFieldDesc:
		v.editDesc.Focus()
	case editFieldDue:
		v.editDue.Focus()
	}
}

// saveTask persists the form. The form closes once the store accepts the
// task; a bad due date or a rejected save keeps it open.
func (v *TaskListView) saveTask() tea.Cmd {
	due, err := models.ParseDue(strings.TrimSpace(v.editDue.Value()), v.deps.now().Location())
	if err != nil {
		v.setStatus(err.Error(), true)
		return nil
	}

	title := v.editTitle.Value()
	desc := v.editDesc.Value()
	priority := v.editPriority
	category := v.editCategory
	st := v.deps.Store

	if v.editingNew {
		in := models.TaskInput{
			Title:       title,
			Description: desc,
			DueDate:     due,
			Priority:    priority,
			Category:    category,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			task, err := st.Add(ctx, in)
			return opDoneMsg{op: "Add", err: err, focusID: task.ID}
		}
	}

	id := v.editID
	return runOp("Update", id, func(ctx context.Context) error {
		task, err := st.Get(id)
		if err != nil {
			return err
		}
		task.Title = title
		task.Description = strings.TrimSpace(desc)
		task.DueDate = due
		task.Priority = priority
		task.Category = category
		_, err = st.Update(ctx, task)
		return err
	})
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.showingNotifications {
		return v.renderNotifications()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderStatus())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(contentWidth-8, 10, 30)).Render(v.searchInput.View())

	filterStyle := s.Button
	if v.focus == FocusFilterDropdown {
		filterStyle = s.ButtonFocused
	}
	filterLabel := "All"
	for _, opt := range v.filterOptions[1:] {
		if opt.active(v.view.Criteria) {
			filterLabel = opt.label
			break
		}
	}
	if !isNarrow {
		filterLabel = "Filter: " + filterLabel
	}
	filterBtn := filterStyle.Render(filterLabel + " ▼")

	titleText := v.view.Criteria.Nav.Label()
	if unread := v.unread(); unread > 0 {
		titleText += " " + s.Badge.Render(fmt.Sprintf("%d", unread))
	}
	sortLine := s.TitleMuted.Render("Sort: " + v.sortLabel())

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, filterBtn)
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backStyle.Render("← Lists"), "  ", searchBox, "  ", filterBtn,
		)
	}

	dropdown := ""
	if v.filterOpen {
		dropdown = "\n" + v.renderFilterDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(titleText), sortLine, header+dropdown)
}

func (v *TaskListView) sortLabel() string {
	label := v.view.Sort.Option.Label()
	if v.view.Sort.Option == taskview.SortNone || v.view.Sort.Option == "" {
		return label
	}
	if v.view.Sort.Ascending {
		return label + " ↑"
	}
	return label + " ↓"
}

func (v *TaskListView) unread() int {
	if v.deps.Center == nil {
		return 0
	}
	return v.deps.Center.Unread()
}

func (v *TaskListView) renderFilterDropdown() string {
	s := v.styles
	items := make([]string, 0, len(v.filterOptions))
	for i, opt := range v.filterOptions {
		itemStyle := s.ListItem
		if v.filterCursor == i {
			itemStyle = s.ListSelected
		}
		mark := " "
		if opt.active(v.view.Criteria) {
			mark = "✓"
		}
		dot := lipgloss.NewStyle().Foreground(opt.color).Render("●")
		items = append(items, itemStyle.Render(mark+" "+dot+" "+opt.label))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if !v.deps.Store.Loaded() {
		return s.TitleMuted.Render("Loading...")
	}
	if len(v.rows) == 0 && v.projection.CompletedCount() == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	open := len(v.projection.Incomplete)
	end := min(v.scrollY+v.visibleItems(), len(v.rows))

	var items []string
	if open == 0 && v.scrollY == 0 {
		items = append(items, s.TitleMuted.Render("  Nothing left to do here."))
	}
	for i := v.scrollY; i < end; i++ {
		if i == open {
			items = append(items, v.renderCompletedHeader())
		}
		items = append(items, v.renderTaskItem(v.rows[i], i == v.cursor && v.focus == FocusTaskList))
	}
	if end == len(v.rows) && end == open && v.projection.CompletedCount() > 0 {
		items = append(items, v.renderCompletedHeader())
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderCompletedHeader() string {
	arrow := "▸"
	if v.projection.Expanded {
		arrow = "▾"
	}
	return v.styles.GroupHeader.Render(fmt.Sprintf("%s Completed %d", arrow, v.projection.CompletedCount()))
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}
	star := " "
	if task.IsStarred {
		star = s.Star.Render("★")
	}
	title := task.Title
	if task.Completed {
		title = s.TaskCompleted.Render(title)
	}
	titleLine := check + " " + star + " " + title

	meta := []string{
		s.Priority(task.Priority).Render(string(task.Priority)),
		s.Category(task.Category).Render(string(task.Category)),
	}
	if task.HasDueDate() {
		due := "due " + task.DueDate.Format("Jan 2 15:04")
		if !task.Completed && task.DueDate.Before(v.deps.now()) {
			due = s.TaskOverdue.Render(due)
		}
		meta = append(meta, due)
	}
	metaLine := "      " + strings.Join(meta, " • ")

	lineStyle := s.ListItem.Width(width)
	if selected {
		lineStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lineStyle.Render(titleLine), lineStyle.Render(metaLine)) + "\n"
}

func (v *TaskListView) renderStatus() string {
	if v.status == "" {
		return ""
	}
	if v.statusErr {
		return v.styles.StatusError.Render(v.status)
	}
	return v.styles.StatusBar.Render(v.status)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	fieldStyles := make([]lipgloss.Style, editFieldCount)
	for i := range fieldStyles {
		fieldStyles[i] = s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == editFieldSave {
		btnStyle = s.ButtonFocused
	} else {
		fieldStyles[v.editFocusIdx] = s.InputFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	priority := s.Priority(v.editPriority).Render("◂ " + string(v.editPriority) + " ▸")
	category := s.Category(v.editCategory).Render("◂ " + string(v.editCategory) + " ▸")

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyles[editFieldTitle].Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		fieldStyles[editFieldDesc].Render(v.editDesc.View()),
		"",
		"Due:",
		fieldStyles[editFieldDue].Width(inputWidth).Render(v.editDue.View()),
		"",
		"Priority:",
		fieldStyles[editFieldPriority].Width(20).Render(priority),
		"",
		"Category:",
		fieldStyles[editFieldCategory].Width(20).Render(category),
		"",
		btnStyle.Render(" Save "),
		"",
		v.renderStatus(),
		s.TitleMuted.Render("Tab: next • ←→: change • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(v.help.ShortHelpView(v.keys.ShortHelp()))
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		v.help.FullHelpView(v.keys.FullHelp()),
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderNotifications() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	items := v.deps.Center.List()
	now := v.deps.now()

	var lines []string
	if len(items) == 0 {
		lines = append(lines, s.TitleMuted.Render("No reminders"))
	}
	for i, n := range items {
		itemStyle := s.ListItem
		if i == v.notifyCursor {
			itemStyle = s.ListSelected
		}
		dot := " "
		if !n.Read {
			dot = lipgloss.NewStyle().Foreground(styles.Current.Error).Render("●")
		}
		when := s.TitleMuted.Render(n.Timestamp.Format("15:04"))
		if task, err := v.deps.Store.Get(n.TaskID); err == nil && task.HasDueDate() && task.DueDate.After(now) {
			when = s.TitleMuted.Render("due " + notify.FormatRemaining(*task.DueDate, now))
		}
		lines = append(lines, itemStyle.Render(dot+" "+n.Message)+" "+when)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(fmt.Sprintf("Reminders (%d unread)", v.unread())),
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		s.TitleMuted.Render("↵: read • a: read all • d: clear • D: clear all • Esc: close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed for good.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.current()
	if !ok {
		return ""
	}

	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}
	dueText := s.TitleMuted.Render("No due date")
	if task.HasDueDate() {
		dueText = task.DueDate.Format("Mon Jan 2, 2006 15:04")
	}
	state := "Open"
	if task.Completed {
		state = "Completed"
	}
	if task.IsStarred {
		state += " • " + s.Star.Render("★ starred")
	}

	helpText := s.Help.Render(
		fmt.Sprintf("%s done • %s star • %s edit • %s delete • %s back",
			s.HelpKey.Render("x"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		state,
		"",
		labelStyle.Render("Priority"),
		s.Priority(task.Priority).Render(string(task.Priority)),
		"",
		labelStyle.Render("Category"),
		s.Category(task.Category).Render(string(task.Category)),
		"",
		labelStyle.Render("Due"),
		dueText,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Created"),
		task.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
		"",
		v.renderStatus(),
		helpText,
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}
