package reminder

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar-day key format used by the schedule.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayOf returns the hour and minute of ts.
func TimeOfDayOf(ts time.Time) TimeOfDay {
	return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}
}

// Task is one scheduled reminder. It is never mutated after creation.
type Task struct {
	ID        string
	Title     string
	Date      string
	EventTime time.Time
	NotifyAt  time.Time
	AlarmAt   time.Time
}

// eventTime combines a date key and a time of day into a local timestamp with
// seconds zeroed.
func eventTime(date string, tod TimeOfDay, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, &ValidationError{Reason: ReasonInvalidDate}
	}
	if !tod.Valid() {
		return time.Time{}, &ValidationError{Reason: ReasonInvalidTime}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour, tod.Minute, 0, 0, loc), nil
}

func compareTasks(a, b Task) int {
	if c := a.EventTime.Compare(b.EventTime); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

// insertSorted appends t and re-sorts the day ascending by event time.
func insertSorted(day []Task, t Task) []Task {
	day = append(day, t)
	slices.SortStableFunc(day, compareTasks)
	return day
}
