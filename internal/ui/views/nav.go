package views

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/taskview"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

type navItem struct {
	mode  taskview.NavMode
	count int
}

func (i navItem) Title() string       { return i.mode.Label() }
func (i navItem) Description() string { return navDescription(i.mode) }
func (i navItem) FilterValue() string { return i.mode.Label() }

func navDescription(m taskview.NavMode) string {
	switch m {
	case taskview.NavMyDay:
		return "Open tasks due today"
	case taskview.NavImportant:
		return "Starred tasks"
	case taskview.NavPlanned:
		return "Tasks with a due date"
	case taskview.NavAssigned:
		return "Tasks assigned to you"
	default:
		return "Everything"
	}
}

type navDelegate struct {
	styles *styles.Styles
	width  int
}

func (d navDelegate) Height() int                               { return 2 }
func (d navDelegate) Spacing() int                              { return 1 }
func (d navDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d navDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	n, ok := item.(navItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	label := n.Title()
	if n.count > 0 {
		label = fmt.Sprintf("%s  %d", label, n.count)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(label), descStyle.Render(n.Description()))
}

// SelectedNav opens the task list for a navigation mode
type SelectedNav struct {
	Mode taskview.NavMode
}

// NavListView is the sidebar: one entry per navigation mode with its open
// task count
type NavListView struct {
	store    *store.Store
	center   *notify.Center
	list     list.Model
	delegate *navDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	showHelpPopup bool
}

func NewNavListView(st *store.Store, center *notify.Center) *NavListView {
	s := styles.NewStyles()
	delegate := &navDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Lists"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &NavListView{
		store:    st,
		center:   center,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
	v.refresh()
	return v
}

func (v *NavListView) Init() tea.Cmd {
	return nil
}

// Select moves the cursor to mode
func (v *NavListView) Select(mode taskview.NavMode) {
	for i, item := range v.list.Items() {
		if n, ok := item.(navItem); ok && n.mode == mode {
			v.list.Select(i)
			return
		}
	}
}

func (v *NavListView) refresh() {
	counts := taskview.Counts(v.store.Tasks(), time.Now())
	items := make([]list.Item, len(taskview.NavModes))
	for i, m := range taskview.NavModes {
		items[i] = navItem{mode: m, count: counts.For(m)}
	}
	v.list.SetItems(items)
	v.loaded = v.store.Loaded()
}

func (v *NavListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case StoreChanged:
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// only q quits from the sidebar
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(navItem); ok {
				return v, func() tea.Msg {
					return SelectedNav{Mode: item.mode}
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *NavListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	content := v.list.View() + "\n" + v.renderStatus() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *NavListView) renderStatus() string {
	if v.center == nil {
		return ""
	}
	unread := v.center.Unread()
	if unread == 0 {
		return ""
	}
	return v.styles.StatusBar.Render(v.styles.Badge.Render(fmt.Sprintf("%d", unread)) + " unread reminders")
}

func (v *NavListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s move • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("↑↓"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *NavListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open list",
		s.HelpKey.Render("↑↓") + "     move",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
