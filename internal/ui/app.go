package ui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/taskview"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewNav View = iota
	ViewTasks
)

const loadTimeout = 10 * time.Second

type loadedMsg struct {
	err error
}

type App struct {
	deps        views.Deps
	changes     <-chan struct{}
	currentView View
	navList     *views.NavListView
	taskList    *views.TaskListView
	loadErr     error
	width       int
	height      int
}

// Creates a new application over deps. The store is loaded by Init.
func NewApp(deps views.Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &App{
		deps:        deps,
		changes:     deps.Store.Subscribe(),
		currentView: ViewNav,
		navList:     views.NewNavListView(deps.Store, deps.Center),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.load, a.waitForChange)
}

func (a *App) load() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return loadedMsg{err: a.deps.Store.Load(ctx)}
}

// waitForChange blocks until the store commits a change
func (a *App) waitForChange() tea.Msg {
	<-a.changes
	return views.StoreChanged{}
}

// restoreNav reopens the list that was open when the app last quit
func (a *App) restoreNav() tea.Cmd {
	if a.deps.Settings == nil {
		return nil
	}
	raw, err := a.deps.Settings.GetSetting(views.SettingNav)
	if err != nil || raw == "" {
		return nil
	}
	mode, err := taskview.ParseNavMode(raw)
	if err != nil {
		return nil
	}
	return a.openNav(mode)
}

func (a *App) openNav(mode taskview.NavMode) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.deps, mode)
	a.navList.Select(mode)

	a.saveSetting(views.SettingNav, string(mode))

	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) saveSetting(key, value string) {
	if a.deps.Settings == nil {
		return
	}
	if err := a.deps.Settings.SetSetting(key, value); err != nil {
		a.deps.Logger.Warn("save setting", "key", key, "error", err)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update nav list size since it persists
		a.navList.Update(msg)

	case loadedMsg:
		if msg.err != nil {
			a.loadErr = msg.err
			a.deps.Logger.Error("initial load failed", "error", msg.err)
			return a, nil
		}
		a.navList.Update(views.StoreChanged{})
		return a, a.restoreNav()

	case views.StoreChanged:
		a.navList.Update(msg)
		var cmd tea.Cmd
		if a.taskList != nil {
			_, cmd = a.taskList.Update(msg)
		}
		return a, tea.Batch(cmd, a.waitForChange)

	case views.NotificationsArrived:
		a.navList.Update(msg)
		if a.taskList != nil {
			a.taskList.Update(msg)
		}
		return a, nil

	case views.SelectedNav:
		return a, a.openNav(msg.Mode)

	case views.BackToNav:
		a.currentView = ViewNav
		a.saveSetting(views.SettingNav, "")
		return a, tea.Batch(
			a.navList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case tea.KeyMsg:
		if a.loadErr != nil {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewNav:
		_, cmd = a.navList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	if a.loadErr != nil {
		s := styles.NewStyles()
		content := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Foreground(styles.Current.Error).Render("Could not load tasks"),
			"",
			s.TitleMuted.Render(a.loadErr.Error()),
			"",
			s.TitleMuted.Render("Press any key to quit"),
		)
		return styles.CenterView(content, a.width, a.height)
	}

	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	}
	return a.navList.View()
}
