package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// PriorityColor returns the accent for a priority level
func PriorityColor(p models.Priority) lipgloss.Color {
	switch p {
	case models.PriorityHigh:
		return Current.Error
	case models.PriorityMedium:
		return Current.Warning
	default:
		return Current.Info
	}
}

// CategoryColor returns the accent for a category
func CategoryColor(c models.Category) lipgloss.Color {
	switch c {
	case models.CategoryWork:
		return Current.Primary
	case models.CategoryPersonal:
		return Current.Secondary
	case models.CategoryShopping:
		return Current.Accent
	case models.CategoryHealth:
		return Current.Success
	default:
		return Current.ForegroundDim
	}
}

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds the pre-computed styles shared by every view
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Bordered panels: filter dropdown, popups
	FilterBar lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Task rows
	TaskCompleted lipgloss.Style
	TaskOverdue   lipgloss.Style
	Star          lipgloss.Style
	GroupHeader   lipgloss.Style
	Badge         lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current
	bordered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		FilterBar: bordered.Padding(0, 1),

		Button: bordered.
			Foreground(t.Foreground).
			Padding(0, 2),
		ButtonFocused: bordered.
			Foreground(t.Primary).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		TaskCompleted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),
		TaskOverdue: lipgloss.NewStyle().Foreground(t.Error),
		Star:        lipgloss.NewStyle().Foreground(t.Warning),
		GroupHeader: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			Padding(0, 2),
		Badge: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Error).
			Padding(0, 1),

		Input: bordered.
			Foreground(t.Foreground).
			Padding(0, 1),
		InputFocused: bordered.
			Foreground(t.Foreground).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help:     lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		StatusBar:   lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(0, 1),
		StatusError: lipgloss.NewStyle().Foreground(t.Error).Padding(0, 1),
	}
}

// Priority renders a priority label in its accent color
func (s *Styles) Priority(p models.Priority) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PriorityColor(p))
}

// Category renders a category label in its accent color
func (s *Styles) Category(c models.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CategoryColor(c))
}
