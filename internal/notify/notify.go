// Package notify schedules local notifications and fans them out to delivery
// channels when they come due.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"remindme/internal/clock"
)

var (
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrNoChannel        = errors.New("no notification channel configured")
)

const historySize = 300

type Notification struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
}

// Deliverer shows a due notification somewhere the user will see it.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

type DelivererFunc func(ctx context.Context, n Notification) error

func (f DelivererFunc) Deliver(ctx context.Context, n Notification) error { return f(ctx, n) }

type Service struct {
	enabled    bool
	clock      clock.Clock
	deliverers []Deliverer
	log        zerolog.Logger

	mu      sync.Mutex
	pending map[string]clock.Timer
	history []Notification
}

// New builds the notification service. enabled=false models a user who has
// not granted notification permission: every request fails.
func New(enabled bool, clk clock.Clock, log zerolog.Logger, deliverers ...Deliverer) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		enabled:    enabled,
		clock:      clk,
		deliverers: deliverers,
		log:        log.With().Str("component", "notify").Logger(),
		pending:    make(map[string]clock.Timer),
	}
}

// ScheduleNotification delivers the notification at fireAt, or as soon as
// possible when fireAt has already passed.
func (s *Service) ScheduleNotification(title, body string, fireAt time.Time) error {
	if !s.enabled {
		return ErrPermissionDenied
	}
	if len(s.deliverers) == 0 {
		return ErrNoChannel
	}

	n := Notification{ID: uuid.NewString(), Title: title, Body: body, FireAt: fireAt}
	delay := fireAt.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[n.ID] = s.clock.AfterFunc(delay, func() { s.deliver(n) })
	s.log.Debug().Str("id", n.ID).Time("fire_at", fireAt).Dur("delay", delay).Msg("notification scheduled")
	return nil
}

func (s *Service) deliver(n Notification) {
	s.mu.Lock()
	if _, ok := s.pending[n.ID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, n.ID)
	s.mu.Unlock()

	ctx := context.Background()
	delivered := 0
	for _, d := range s.deliverers {
		if err := d.Deliver(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("id", n.ID).Msg("notification delivery failed")
			continue
		}
		delivered++
	}
	s.log.Info().Str("id", n.ID).Str("title", n.Title).Int("channels", delivered).Msg("notification delivered")
	s.appendHistory(n)
}

func (s *Service) appendHistory(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, n)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

// History returns delivered notifications, oldest first.
func (s *Service) History() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.history...)
}

func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop drops every notification that has not been delivered yet.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

// Command delivers by running an external program with the title and body
// appended as the last two arguments, e.g. ["notify-send", "-u", "normal"].
// It does not wait for the program to exit.
type Command struct {
	Argv    []string
	Timeout time.Duration
	Log     zerolog.Logger
}

func (c Command) Deliver(ctx context.Context, n Notification) error {
	if len(c.Argv) == 0 {
		return ErrNoChannel
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	args := append(append([]string(nil), c.Argv[1:]...), n.Title, n.Body)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start %s: %w", c.Argv[0], err)
	}
	go func() {
		defer cancel()
		if err := cmd.Wait(); err != nil {
			c.Log.Warn().Err(err).Str("cmd", c.Argv[0]).Msg("notification command failed")
		}
	}()
	return nil
}
