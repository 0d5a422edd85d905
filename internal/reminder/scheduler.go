// Package reminder turns a (date, time, title) triple into a scheduled
// notification, a deferred alarm and an entry in the per-day schedule.
package reminder

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"remindme/internal/clock"
)

// Notifier delivers a notification at fireAt.
type Notifier interface {
	ScheduleNotification(title, body string, fireAt time.Time) error
}

// Sound is a loaded audio resource.
type Sound interface {
	SetLooping(loop bool) error
	// Play starts playback from the beginning, restarting if already playing.
	Play() error
	Stop() error
	Unload() error
}

type SoundLoader interface {
	Load(ctx context.Context, locator string) (Sound, error)
}

// Alerter shows a short, non-blocking notice to the user.
type Alerter interface {
	Alert(title, message string)
}

type AlerterFunc func(title, message string)

func (f AlerterFunc) Alert(title, message string) { f(title, message) }

type Options struct {
	NotifyOffset      time.Duration
	AlarmOffset       time.Duration
	AlarmCeiling      time.Duration
	NotificationTitle string
	SoundLocator      string
	Location          *time.Location
}

func DefaultOptions() Options {
	return Options{
		NotifyOffset:      60 * time.Minute,
		AlarmOffset:       15 * time.Minute,
		AlarmCeiling:      60 * time.Second,
		NotificationTitle: "Upcoming Event",
		Location:          time.Local,
	}
}

type Deps struct {
	Clock    clock.Clock
	Notifier Notifier
	Loader   SoundLoader
	Alerter  Alerter
	Logger   zerolog.Logger
}

type Scheduler struct {
	opts     Options
	clock    clock.Clock
	notifier Notifier
	loader   SoundLoader
	alerts   Alerter
	log      zerolog.Logger

	mu       sync.Mutex
	schedule map[string][]Task
	sound    Sound
	timers   map[*pendingTimer]struct{}
	closed   bool
}

type pendingTimer struct {
	t clock.Timer
}

func New(opts Options, deps Deps) *Scheduler {
	def := DefaultOptions()
	if opts.NotifyOffset <= 0 {
		opts.NotifyOffset = def.NotifyOffset
	}
	if opts.AlarmOffset <= 0 {
		opts.AlarmOffset = def.AlarmOffset
	}
	if opts.AlarmCeiling <= 0 {
		opts.AlarmCeiling = def.AlarmCeiling
	}
	if opts.NotificationTitle == "" {
		opts.NotificationTitle = def.NotificationTitle
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Alerter == nil {
		deps.Alerter = AlerterFunc(func(string, string) {})
	}
	return &Scheduler{
		opts:     opts,
		clock:    deps.Clock,
		notifier: deps.Notifier,
		loader:   deps.Loader,
		alerts:   deps.Alerter,
		log:      deps.Logger.With().Str("component", "scheduler").Logger(),
		schedule: make(map[string][]Task),
		timers:   make(map[*pendingTimer]struct{}),
	}
}

// ScheduleReminder validates the input, requests the notification, registers
// the alarm and files the task under its day. Collaborator failures are
// alerted and do not stop the remaining steps.
func (s *Scheduler) ScheduleReminder(date string, tod TimeOfDay, title string) (Task, error) {
	if strings.TrimSpace(date) == "" {
		s.alerts.Alert("Error", "Please select a date first.")
		return Task{}, &ValidationError{Reason: ReasonNoDate}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		s.alerts.Alert("Error", "Task title cannot be empty.")
		return Task{}, &ValidationError{Reason: ReasonEmptyTitle}
	}
	at, err := eventTime(date, tod, s.opts.Location)
	if err != nil {
		s.alerts.Alert("Error", "Please pick a valid date and time.")
		return Task{}, err
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Task{}, ErrClosed
	}

	task := Task{
		ID:        uuid.NewString(),
		Title:     title,
		Date:      at.Format(DateLayout),
		EventTime: at,
		NotifyAt:  at.Add(-s.opts.NotifyOffset),
		AlarmAt:   at.Add(-s.opts.AlarmOffset),
	}
	log := s.log.With().Str("task_id", task.ID).Str("date", task.Date).Logger()

	s.requestNotification(log, task, tod)

	delay := task.AlarmAt.Sub(s.clock.Now())
	if delay < 0 {
		log.Warn().Dur("late_by", -delay).Msg("alarm time already passed, firing now")
	}
	s.after(delay, func() { _ = s.PlayAlarmSound() })

	s.mu.Lock()
	s.schedule[task.Date] = insertSorted(s.schedule[task.Date], task)
	s.mu.Unlock()

	log.Info().
		Time("event_at", task.EventTime).
		Time("notify_at", task.NotifyAt).
		Time("alarm_at", task.AlarmAt).
		Msg("reminder scheduled")
	s.alerts.Alert("Reminder Set!", fmt.Sprintf("\"%s\" added on %s at %s", title, task.Date, tod))
	return task, nil
}

func (s *Scheduler) requestNotification(log zerolog.Logger, task Task, tod TimeOfDay) {
	if s.notifier == nil {
		log.Warn().Msg("no notifier configured")
		s.alerts.Alert("Notification Error", "Notifications are unavailable")
		return
	}
	body := fmt.Sprintf("\"%s\" at %s", task.Title, tod)
	if err := s.notifier.ScheduleNotification(s.opts.NotificationTitle, body, task.NotifyAt); err != nil {
		log.Warn().Err(err).Msg("notification not scheduled")
		s.alerts.Alert("Notification Error", fmt.Sprintf("Couldn't schedule notification: %v", err))
	}
}

// after registers a tracked deferred callback. Callbacks registered after
// Close never run.
func (s *Scheduler) after(d time.Duration, f func()) {
	p := &pendingTimer{}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timers[p] = struct{}{}
	s.mu.Unlock()

	t := s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[p]
		delete(s.timers, p)
		s.mu.Unlock()
		if live {
			f()
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.timers[p]; live {
		p.t = t
	} else if s.closed {
		t.Stop()
	}
}

// Tasks returns a copy of the day's tasks, ascending by event time.
func (s *Scheduler) Tasks(date string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.schedule[date])
}

func (s *Scheduler) HasTasks(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.schedule[date]) > 0
}

// Dates returns every day that has at least one task, in calendar order.
func (s *Scheduler) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.schedule))
	for d, tasks := range s.schedule {
		if len(tasks) > 0 {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// Pending returns the number of registered callbacks that have not run yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every pending callback and releases the alarm sound. It is safe
// to call more than once.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.timers
	s.timers = make(map[*pendingTimer]struct{})
	snd := s.sound
	s.sound = nil
	s.mu.Unlock()

	for p := range pending {
		if p.t != nil {
			p.t.Stop()
		}
	}
	if snd != nil {
		if err := snd.Unload(); err != nil {
			return &CollaboratorError{Op: "unload sound", Err: err}
		}
	}
	s.log.Debug().Int("stopped_timers", len(pending)).Msg("scheduler closed")
	return nil
}
