package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"remindme/internal/clock"
	"remindme/internal/reminder"
)

const statusTTL = 5 * time.Second

type focus int

const (
	focusCalendar focus = iota
	focusTitle
)

type statusMsg struct {
	message string
	color   string
}

type tickMsg time.Time

// callbackMsg carries a timer callback onto the event loop.
type callbackMsg struct {
	fn func()
}

type soundLoadedMsg struct {
	err error
}

// Model
type model struct {
	sched       *reminder.Scheduler
	inbox       *inbox
	clock       clock.Clock
	loadTimeout time.Duration

	now          time.Time
	cal          calendar
	selectedDate string
	selectedTime reminder.TimeOfDay
	title        textinput.Model
	picker       timePicker
	pickerOpen   bool
	focus        focus
	schedule     table.Model
	soundState   string

	statusMsg    string
	statusColor  string
	statusExpiry time.Time
	width        int
	height       int
}

func showStatus(msg string, color string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: msg, color: color}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func initialModel(sched *reminder.Scheduler, box *inbox, clk clock.Clock, loadTimeout time.Duration) model {
	now := clk.Now()

	ti := textinput.New()
	ti.Placeholder = "Enter Task Title"
	ti.CharLimit = 120
	ti.Width = 36

	m := model{
		sched:        sched,
		inbox:        box,
		clock:        clk,
		loadTimeout:  loadTimeout,
		now:          now,
		cal:          newCalendar(now),
		selectedTime: reminder.TimeOfDayOf(now),
		title:        ti,
		soundState:   "loading",
		statusColor:  colorInfo,
	}
	m.setupTable()
	return m
}

func (m *model) setupTable() {
	m.schedule = table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 7},
			{Title: "Task", Width: 30},
			{Title: "Notify", Width: 7},
			{Title: "Alarm", Width: 7},
		}),
		table.WithFocused(false),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("86"))
	s.Selected = lipgloss.NewStyle()
	m.schedule.SetStyles(s)
}

func (m *model) adjustLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	tableHeight := m.height - 20
	if tableHeight < 4 {
		tableHeight = 4
	}
	m.schedule.SetHeight(tableHeight)
}

func (m *model) scheduleRows() []table.Row {
	rows := []table.Row{}
	if m.selectedDate == "" {
		return rows
	}
	for _, task := range m.sched.Tasks(m.selectedDate) {
		rows = append(rows, table.Row{
			task.EventTime.Format("15:04"),
			task.Title,
			task.NotifyAt.Format("15:04"),
			task.AlarmAt.Format("15:04"),
		})
	}
	return rows
}

func (m model) loadSound() tea.Cmd {
	sched, timeout := m.sched, m.loadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return soundLoadedMsg{err: sched.LoadSound(ctx)}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), m.loadSound())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case statusMsg:
		m.setStatus(msg.message, msg.color)

	case tickMsg:
		m.now = time.Time(msg)
		cmd = tick()

	case callbackMsg:
		msg.fn()

	case soundLoadedMsg:
		if msg.err != nil {
			m.soundState = "unavailable"
		} else {
			m.soundState = "ready"
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustLayout()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	m.drainInbox()
	m.schedule.SetRows(m.scheduleRows())
	return m, cmd
}

func (m *model) setStatus(message, color string) {
	m.statusMsg = message
	m.statusColor = color
	m.statusExpiry = m.clock.Now().Add(statusTTL)
}

func (m *model) drainInbox() {
	notices := m.inbox.drain()
	if len(notices) == 0 {
		return
	}
	parts := make([]string, 0, len(notices))
	for _, n := range notices {
		parts = append(parts, n.String())
	}
	m.setStatus(strings.Join(parts, "  "), notices[len(notices)-1].color())
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.pickerOpen {
		return m.handlePickerKeys(msg)
	}
	if m.focus == focusTitle {
		return m.handleTitleKeys(msg)
	}
	return m.handleCalendarKeys(msg)
}

func (m *model) handleCalendarKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		m.cal.move(-1)
	case "right", "l":
		m.cal.move(1)
	case "up", "k":
		m.cal.move(-7)
	case "down", "j":
		m.cal.move(7)
	case "[":
		m.cal.shiftMonth(-1)
	case "]":
		m.cal.shiftMonth(1)
	case ".":
		m.cal.jump(m.clock.Now())
	case "enter", " ":
		m.selectedDate = m.cal.key()
		return m.focusTitle()
	case "tab", "i":
		if m.selectedDate != "" {
			return m.focusTitle()
		}
	case "t":
		if m.selectedDate != "" {
			m.openPicker()
		}
	case "s":
		m.setReminder()
	}
	return nil
}

func (m *model) handleTitleKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab":
		m.focus = focusCalendar
		m.title.Blur()
		return nil
	case "enter":
		m.setReminder()
		return nil
	case "ctrl+t":
		m.openPicker()
		return nil
	}
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return cmd
}

func (m *model) handlePickerKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.pickerOpen = false
		return showStatus("Time selection cancelled", colorInfo)
	case "enter":
		m.selectedTime = m.picker.value()
		m.pickerOpen = false
		return showStatus("⏰ Time set to "+m.selectedTime.String(), colorOK)
	case "up", "k":
		m.picker.step(1)
	case "down", "j":
		m.picker.step(-1)
	case "pgup":
		m.picker.step(10)
	case "pgdown":
		m.picker.step(-10)
	case "left", "right", "h", "l", "tab", "shift+tab":
		m.picker.toggleField()
	}
	return nil
}

func (m *model) focusTitle() tea.Cmd {
	m.focus = focusTitle
	return m.title.Focus()
}

func (m *model) openPicker() {
	m.picker = newTimePicker(m.selectedTime)
	m.pickerOpen = true
}

// setReminder hands the form to the scheduler. Its alerts arrive through the
// inbox; the title is cleared only on success.
func (m *model) setReminder() {
	if _, err := m.sched.ScheduleReminder(m.selectedDate, m.selectedTime, m.title.Value()); err != nil {
		return
	}
	m.title.Reset()
}

func (m model) View() string {
	header := headerStyle.Render("⏰ remindme") + "  " + dimStyle.Render(m.now.Format("Mon Jan 2 15:04:05")+"  sound: "+m.soundState)

	calPanel := panelStyle
	if m.focus == focusCalendar && !m.pickerOpen {
		calPanel = activePanelStyle
	}
	today := m.now.Format(reminder.DateLayout)
	cal := calPanel.Render(m.cal.view(m.selectedDate, today, m.sched.HasTasks))

	top := cal
	if m.selectedDate != "" {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cal, " ", m.formView())
	}

	sections := []string{header, "", top}
	if m.selectedDate != "" && m.sched.HasTasks(m.selectedDate) {
		sections = append(sections,
			"",
			labelStyle.Render("Schedule for "+m.selectedDate),
			m.schedule.View(),
		)
	}

	commandRow := strings.Join(m.commands(), bulletStyle.Render(" • "))

	// Status message with expiry
	if m.statusMsg != "" && m.now.Before(m.statusExpiry) {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor))
		commandRow += "\n> " + statusStyle.Render(m.statusMsg)
	}

	sections = append(sections, "", commandRow)
	return lipgloss.JoinVertical(lipgloss.Top, sections...)
}

func (m model) formView() string {
	if m.pickerOpen {
		return activePanelStyle.Render(m.picker.view())
	}

	panel := panelStyle
	if m.focus == focusTitle {
		panel = activePanelStyle
	}
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Date: ")+m.selectedDate,
		"",
		labelStyle.Render("Title:"),
		m.title.View(),
		"",
		labelStyle.Render("Time: ")+m.selectedTime.String(),
	))
}

func (m model) commands() []string {
	var commands []string
	cmd := func(key, action string) {
		commands = append(commands, keyStyle.Render(key)+": "+actionStyle.Render(action))
	}
	switch {
	case m.pickerOpen:
		cmd("↑↓", "change")
		cmd("←→", "hour/minute")
		cmd("enter", "confirm")
		cmd("esc", "cancel")
	case m.focus == focusTitle:
		cmd("enter", "set reminder")
		cmd("ctrl+t", "select time")
		cmd("tab/esc", "calendar")
	default:
		cmd("←↑↓→", "move")
		cmd("[ ]", "month")
		cmd(".", "today")
		cmd("enter", "pick date")
		if m.selectedDate != "" {
			cmd("t", "select time")
			cmd("s", "set reminder")
		}
		cmd("q", "quit")
	}
	return commands
}
