package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"remindme/internal/reminder"
)

const (
	fieldHour = iota
	fieldMinute
)

// timePicker is the modal hour/minute selector.
type timePicker struct {
	hour   int
	minute int
	field  int
}

func newTimePicker(t reminder.TimeOfDay) timePicker {
	return timePicker{hour: t.Hour, minute: t.Minute}
}

func (p *timePicker) step(delta int) {
	switch p.field {
	case fieldHour:
		p.hour = wrap(p.hour+delta, 24)
	case fieldMinute:
		p.minute = wrap(p.minute+delta, 60)
	}
}

func (p *timePicker) toggleField() {
	if p.field == fieldHour {
		p.field = fieldMinute
	} else {
		p.field = fieldHour
	}
}

func (p timePicker) value() reminder.TimeOfDay {
	return reminder.TimeOfDay{Hour: p.hour, Minute: p.minute}
}

func (p timePicker) view() string {
	hour, minute := pickerFieldStyle, pickerFieldStyle
	if p.field == fieldHour {
		hour = pickerActiveFieldStyle
	} else {
		minute = pickerActiveFieldStyle
	}
	clock := lipgloss.JoinHorizontal(lipgloss.Center,
		hour.Render(fmt.Sprintf("%02d", p.hour)),
		":",
		minute.Render(fmt.Sprintf("%02d", p.minute)),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Select Time"),
		"",
		clock,
	)
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
