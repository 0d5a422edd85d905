package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"remindme/internal/reminder"
)

// calendar is a month grid with a day cursor.
type calendar struct {
	cursor time.Time
}

func newCalendar(day time.Time) calendar {
	return calendar{cursor: midnight(day)}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func (c *calendar) move(days int) {
	c.cursor = c.cursor.AddDate(0, 0, days)
}

// shiftMonth moves by whole months, clamping the day to the target month's
// length (Jan 31 -> Feb 29).
func (c *calendar) shiftMonth(n int) {
	y, m, d := c.cursor.Date()
	loc := c.cursor.Location()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	c.cursor = time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
}

func (c *calendar) jump(day time.Time) {
	c.cursor = midnight(day)
}

func (c calendar) key() string {
	return c.cursor.Format(reminder.DateLayout)
}

// view renders the month containing the cursor. marked reports days that
// have tasks.
func (c calendar) view(selected, today string, marked func(string) bool) string {
	y, m, _ := c.cursor.Date()
	loc := c.cursor.Location()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	var b strings.Builder
	b.WriteString(monthStyle.Render(fmt.Sprintf("%s %d", m, y)))
	b.WriteString("\n")

	var head []string
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		head = append(head, weekdayStyle.Render(wd))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, head...))

	cells := make([]string, int(first.Weekday()))
	for i := range cells {
		cells[i] = cellStyle.Render("")
	}
	cursorKey := c.key()
	for d := 1; d <= daysIn(y, m, loc); d++ {
		key := time.Date(y, m, d, 0, 0, 0, 0, loc).Format(reminder.DateLayout)
		label := fmt.Sprintf("%d", d)
		if marked != nil && marked(key) {
			label += "•"
		}
		style := cellStyle
		switch {
		case key == cursorKey:
			style = cursorStyle
		case key == selected:
			style = selectedStyle
		case marked != nil && marked(key):
			style = markedStyle
		case key == today:
			style = todayStyle
		}
		cells = append(cells, style.Render(label))
	}

	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return b.String()
}
