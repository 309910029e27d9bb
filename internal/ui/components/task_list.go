package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nick-dorsch/dolist/pkg/models"
)

const dateLayout = "Jan 2, 2006"

var (
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("12")).
				Bold(true)

	doneRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	emptyHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	emptyHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// TaskList renders the filtered tasks in a scrolling viewport with a cursor.
type TaskList struct {
	viewport viewport.Model
	tasks    []models.Task
	filter   models.Filter
	cursor   int
	ready    bool
	width    int
	height   int

	// rowStart[i] is the first content line of task i.
	rowStart []int
}

func NewTaskList(width, height int) *TaskList {
	l := &TaskList{filter: models.FilterAll}
	l.SetSize(width, height)
	return l
}

func (l *TaskList) SetSize(width, height int) {
	l.width = width
	l.height = height
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !l.ready {
		l.viewport = viewport.New(vpWidth, height)
		l.ready = true
	} else {
		l.viewport.Width = vpWidth
		l.viewport.Height = height
	}
	l.updateContent()
}

// SetTasks replaces the rows. The cursor stays on the same task when it is
// still listed, otherwise it is clamped to the list.
func (l *TaskList) SetTasks(tasks []models.Task, filter models.Filter) {
	var selectedID string
	if t, ok := l.Selected(); ok {
		selectedID = t.ID
	}
	if filter != l.filter {
		l.cursor = 0
		selectedID = ""
	}

	l.tasks = tasks
	l.filter = filter

	l.cursor = min(l.cursor, len(tasks)-1)
	for i, t := range tasks {
		if t.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.cursor = max(l.cursor, 0)
	l.updateContent()
}

func (l *TaskList) Selected() (models.Task, bool) {
	if l.cursor < 0 || l.cursor >= len(l.tasks) {
		return models.Task{}, false
	}
	return l.tasks[l.cursor], true
}

func (l *TaskList) Cursor() int {
	return l.cursor
}

func (l *TaskList) Len() int {
	return len(l.tasks)
}

func (l *TaskList) CursorUp() {
	if l.cursor > 0 {
		l.cursor--
		l.updateContent()
	}
}

func (l *TaskList) CursorDown() {
	if l.cursor < len(l.tasks)-1 {
		l.cursor++
		l.updateContent()
	}
}

func (l *TaskList) updateContent() {
	width := l.viewport.Width
	if width <= 0 {
		width = 40
	}

	if len(l.tasks) == 0 {
		heading, hint := l.filter.EmptyState()
		content := lipgloss.PlaceHorizontal(width, lipgloss.Center,
			emptyHeadingStyle.Render(heading)+"\n"+emptyHintStyle.Render(hint))
		l.rowStart = nil
		l.viewport.SetContent(content)
		l.viewport.GotoTop()
		return
	}

	var lines []string
	l.rowStart = make([]int, len(l.tasks))
	titleWidth := max(width-6, 1)

	for i, t := range l.tasks {
		l.rowStart[i] = len(lines)

		pointer := "  "
		style := rowStyle
		if t.Completed {
			style = doneRowStyle
		}
		if i == l.cursor {
			pointer = "> "
			style = selectedRowStyle.Strikethrough(t.Completed)
		}
		box := "[ ]"
		if t.Completed {
			box = "[✓]"
		}

		wrapped := strings.Split(lipgloss.NewStyle().Width(titleWidth).Render(t.Title), "\n")
		for j, line := range wrapped {
			line = strings.TrimRight(line, " ")
			if j == 0 {
				lines = append(lines, pointer+box+" "+style.Render(line))
			} else {
				lines = append(lines, "      "+style.Render(line))
			}
		}
		for _, line := range strings.Split(lipgloss.NewStyle().Width(titleWidth).Render(taskMeta(t)), "\n") {
			lines = append(lines, "      "+metaStyle.Render(strings.TrimRight(line, " ")))
		}
	}

	l.viewport.SetContent(strings.Join(lines, "\n"))
	l.scrollToCursor()
}

func taskMeta(t models.Task) string {
	meta := "Created: " + t.CreatedAt.Local().Format(dateLayout)
	if t.CompletedAt != nil {
		meta += fmt.Sprintf(" • Completed: %s", t.CompletedAt.Local().Format(dateLayout))
	}
	return meta
}

// scrollToCursor keeps the selected row inside the viewport.
func (l *TaskList) scrollToCursor() {
	if l.cursor >= len(l.rowStart) || l.viewport.Height <= 0 {
		return
	}
	top := l.rowStart[l.cursor]
	bottom := l.viewport.TotalLineCount() - 1
	if l.cursor+1 < len(l.rowStart) {
		bottom = l.rowStart[l.cursor+1] - 1
	}

	switch {
	case top < l.viewport.YOffset:
		l.viewport.SetYOffset(top)
	case bottom >= l.viewport.YOffset+l.viewport.Height:
		l.viewport.SetYOffset(bottom - l.viewport.Height + 1)
	}
}

func (l *TaskList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *TaskList) View() string {
	if !l.ready {
		return ""
	}

	if l.viewport.TotalLineCount() <= l.viewport.Height {
		return l.viewport.View()
	}

	h := l.viewport.Height
	percent := l.viewport.ScrollPercent()

	handlePos := int(float64(h-1) * percent)

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, l.viewport.View(), sb.String())
}
