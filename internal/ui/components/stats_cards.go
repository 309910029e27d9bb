package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nick-dorsch/dolist/pkg/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	cardNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	totalColor     = lipgloss.Color("12")
	completedColor = lipgloss.Color("42")
	pendingColor   = lipgloss.Color("214")
	todayColor     = lipgloss.Color("171")
)

// StatsCards renders the four summary cards shown above the task list.
type StatsCards struct {
	Stats models.TaskStats
	Width int
}

func NewStatsCards(width int) *StatsCards {
	return &StatsCards{Width: width}
}

func (c *StatsCards) View() string {
	s := c.Stats
	cards := []struct {
		title string
		value int
		note  string
		color lipgloss.Color
	}{
		{"Total Tasks", s.Total, "", totalColor},
		{"Completed", s.Completed, fmt.Sprintf("%d%% completion rate", s.CompletionRate()), completedColor},
		{"Pending", s.Pending, "", pendingColor},
		{"Today", s.CompletedToday, "completed today", todayColor},
	}

	// Four across when there is room, otherwise two rows of two.
	perRow := 4
	cardWidth := c.Width / 4
	if cardWidth < 22 {
		perRow = 2
		cardWidth = c.Width / 2
	}
	if cardWidth < 12 {
		cardWidth = 12
	}

	var rendered []string
	for _, card := range cards {
		rendered = append(rendered, c.renderCard(card.title, card.value, card.note, card.color, cardWidth))
	}

	var rows []string
	for i := 0; i < len(rendered); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[i:i+perRow]...))
	}
	return strings.Join(rows, "\n")
}

func (c *StatsCards) renderCard(title string, value int, note string, color lipgloss.Color, width int) string {
	lines := []string{
		cardTitleStyle.Render(title),
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", value)),
	}
	if note != "" {
		lines = append(lines, cardNoteStyle.Render(note))
	} else {
		lines = append(lines, "")
	}

	// width includes the left border and padding
	return cardStyle.
		BorderForeground(color).
		Width(width - 1).
		Render(strings.Join(lines, "\n"))
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
)

// FilterTabs renders the All/Pending/Completed tabs with their counts.
func FilterTabs(active models.Filter, stats models.TaskStats) string {
	counts := map[models.Filter]int{
		models.FilterAll:       stats.Total,
		models.FilterPending:   stats.Pending,
		models.FilterCompleted: stats.Completed,
	}

	var tabs []string
	for _, f := range models.Filters {
		label := fmt.Sprintf("%s (%d)", f.Label(), counts[f])
		if f == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
