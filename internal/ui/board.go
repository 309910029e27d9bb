package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nick-dorsch/dolist/internal/notify"
	"github.com/nick-dorsch/dolist/internal/tasks"
	"github.com/nick-dorsch/dolist/internal/ui/components"
	"github.com/nick-dorsch/dolist/pkg/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

var noticeStyles = map[notify.Level]lipgloss.Style{
	notify.LevelInfo:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	notify.LevelDestructive: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	notify.LevelError:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

const (
	defaultWidth  = 80
	defaultHeight = 24
)

type boardMode int

const (
	modeBrowse boardMode = iota
	modeAdd
	modeEdit
)

type noticeMsg notify.Notice

type tasksChangedMsg struct{}

// Relay forwards store notices and change events into a running board.
// Sends never block; events are dropped when the board falls behind, and the
// next change event refreshes the whole view anyway.
type Relay struct {
	ch chan tea.Msg
}

func NewRelay() *Relay {
	return &Relay{ch: make(chan tea.Msg, 64)}
}

// Notify implements notify.Notifier.
func (r *Relay) Notify(ctx context.Context, n notify.Notice) {
	r.send(noticeMsg(n))
}

func (r *Relay) changed([]models.Task) {
	r.send(tasksChangedMsg{})
}

func (r *Relay) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	default:
	}
}

func (r *Relay) listen() tea.Cmd {
	return func() tea.Msg {
		return <-r.ch
	}
}

// BoardModel is the interactive task board: stats, filter tabs, the task
// list and an input line for adding and editing.
type BoardModel struct {
	ctx    context.Context
	store  *tasks.Store
	relay  *Relay
	filter models.Filter

	stats *components.StatsCards
	list  *components.TaskList
	input textinput.Model

	mode      boardMode
	editingID string
	notice    *notify.Notice

	width    int
	height   int
	quitting bool
}

func NewBoardModel(ctx context.Context, store *tasks.Store, relay *Relay) *BoardModel {
	if relay == nil {
		relay = NewRelay()
	}

	input := textinput.New()
	input.Placeholder = "Add a new task..."
	input.CharLimit = 500

	m := &BoardModel{
		ctx:    ctx,
		store:  store,
		relay:  relay,
		filter: models.FilterAll,
		stats:  components.NewStatsCards(defaultWidth),
		list:   components.NewTaskList(defaultWidth, 10),
		input:  input,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.layout()
	m.refresh()
	return m
}

func (m *BoardModel) Init() tea.Cmd {
	return m.relay.listen()
}

func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case noticeMsg:
		n := notify.Notice(msg)
		m.notice = &n
		return m, m.relay.listen()

	case tasksChangedMsg:
		m.refresh()
		return m, m.relay.listen()

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, m.list.Update(msg)
}

func (m *BoardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.list.CursorUp()
	case "down", "j":
		m.list.CursorDown()

	case "tab", "right", "l":
		m.setFilter(m.shiftFilter(1))
	case "shift+tab", "left", "h":
		m.setFilter(m.shiftFilter(-1))
	case "1":
		m.setFilter(models.FilterAll)
	case "2":
		m.setFilter(models.FilterPending)
	case "3":
		m.setFilter(models.FilterCompleted)

	case " ", "x", "enter":
		if t, ok := m.list.Selected(); ok {
			m.store.Toggle(m.ctx, t.ID)
			m.refresh()
		}

	case "a", "n":
		m.mode = modeAdd
		m.input.Placeholder = "Add a new task..."
		m.input.SetValue("")
		return m, m.input.Focus()

	case "e":
		if t, ok := m.list.Selected(); ok {
			m.mode = modeEdit
			m.editingID = t.ID
			m.input.Placeholder = "Task title"
			m.input.SetValue(t.Title)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}

	case "d", "delete":
		if t, ok := m.list.Selected(); ok {
			m.store.Delete(m.ctx, t.ID)
			m.refresh()
		}

	case "c":
		if m.store.Stats().Completed > 0 {
			m.store.ClearCompleted(m.ctx)
			m.refresh()
		}
	}

	return m, nil
}

func (m *BoardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		m.closeInput()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		var err error
		switch m.mode {
		case modeAdd:
			if strings.TrimSpace(value) == "" {
				// an empty add form is not submitted
				return m, nil
			}
			_, err = m.store.Add(m.ctx, value)
		case modeEdit:
			_, err = m.store.Update(m.ctx, m.editingID, value)
		}
		m.refresh()
		// Keep the form open on a rejected title so it can be corrected.
		if err != nil && tasks.IsUserError(err) {
			return m, nil
		}
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *BoardModel) closeInput() {
	m.mode = modeBrowse
	m.editingID = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m *BoardModel) shiftFilter(delta int) models.Filter {
	n := len(models.Filters)
	for i, f := range models.Filters {
		if f == m.filter {
			return models.Filters[((i+delta)%n+n)%n]
		}
	}
	return models.FilterAll
}

func (m *BoardModel) setFilter(f models.Filter) {
	m.filter = f
	m.refresh()
}

func (m *BoardModel) refresh() {
	m.stats.Stats = m.store.Stats()
	m.list.SetTasks(m.store.Filter(m.filter), m.filter)
}

// layout gives the list whatever height the header and footer leave.
func (m *BoardModel) layout() {
	m.stats.Width = m.width
	m.input.Width = max(m.width-6, 10)

	header := lipgloss.Height(m.headerView())
	footer := 4
	m.list.SetSize(m.width, max(m.height-header-footer, 3))
}

func (m *BoardModel) headerView() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Do List"))
	s.WriteString("  ")
	s.WriteString(subtitleStyle.Render("Organize your tasks with style."))
	s.WriteString("\n\n")
	s.WriteString(m.stats.View())
	s.WriteString("\n\n")
	s.WriteString(components.FilterTabs(m.filter, m.stats.Stats))
	s.WriteString("\n")
	return s.String()
}

func (m *BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(m.headerView())
	s.WriteString(m.list.View())
	s.WriteString("\n\n")

	switch m.mode {
	case modeAdd:
		s.WriteString(promptStyle.Render("Add: ") + m.input.View())
	case modeEdit:
		s.WriteString(promptStyle.Render("Edit: ") + m.input.View())
	default:
		if m.notice != nil {
			s.WriteString(noticeStyles[m.notice.Level].Render(m.notice.String()))
		}
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))
	return s.String()
}

func (m *BoardModel) help() string {
	if m.mode != modeBrowse {
		return "enter save • esc cancel"
	}
	parts := []string{"a add", "space toggle", "e edit", "d delete", "tab filter"}
	if m.stats.Stats.Completed > 0 {
		parts = append(parts, "c clear completed")
	}
	return strings.Join(append(parts, "q quit"), " • ")
}

// Notice is the latest store notice, if any.
func (m *BoardModel) Notice() (notify.Notice, bool) {
	if m.notice == nil {
		return notify.Notice{}, false
	}
	return *m.notice, true
}

// RunBoard runs the board until the user quits. The store should have been
// created with relay as (one of) its notifiers so notices reach the board.
func RunBoard(ctx context.Context, store *tasks.Store, relay *Relay) error {
	m := NewBoardModel(ctx, store, relay)
	unsubscribe := store.Subscribe(m.relay.changed)
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
