package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindme/internal/clock"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Deliver(_ context.Context, n Notification) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, n)
	return nil
}

func TestScheduleNotification_Disabled(t *testing.T) {
	rec := &recorder{}
	s := New(false, clock.NewFake(t0), zerolog.Nop(), rec)

	err := s.ScheduleNotification("Upcoming Event", "x", t0.Add(time.Hour))

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduleNotification_NoChannel(t *testing.T) {
	s := New(true, clock.NewFake(t0), zerolog.Nop())
	assert.ErrorIs(t, s.ScheduleNotification("t", "b", t0), ErrNoChannel)
}

func TestScheduleNotification_DeliversAtFireTime(t *testing.T) {
	clk := clock.NewFake(t0)
	a, b := &recorder{}, &recorder{}
	s := New(true, clk, zerolog.Nop(), a, b)

	require.NoError(t, s.ScheduleNotification("Upcoming Event", `"Dentist" at 14:00`, t0.Add(4*time.Hour)))
	assert.Equal(t, 1, s.Pending())

	clk.Advance(4*time.Hour - time.Second)
	assert.Empty(t, a.got)

	clk.Advance(time.Second)
	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Equal(t, "Upcoming Event", a.got[0].Title)
	assert.Equal(t, `"Dentist" at 14:00`, a.got[0].Body)
	assert.Equal(t, 0, s.Pending())
	assert.Len(t, s.History(), 1)
}

func TestScheduleNotification_PastFireTime(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := &recorder{}
	s := New(true, clk, zerolog.Nop(), rec)

	require.NoError(t, s.ScheduleNotification("t", "b", t0.Add(-time.Hour)))
	clk.Advance(0)
	assert.Len(t, rec.got, 1)
}

func TestDeliver_FailingChannelDoesNotBlockOthers(t *testing.T) {
	clk := clock.NewFake(t0)
	bad := &recorder{err: errors.New("dbus unavailable")}
	good := &recorder{}
	s := New(true, clk, zerolog.Nop(), bad, good)

	require.NoError(t, s.ScheduleNotification("t", "b", t0))
	clk.Advance(0)

	assert.Empty(t, bad.got)
	assert.Len(t, good.got, 1)
}

func TestStop(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := &recorder{}
	s := New(true, clk, zerolog.Nop(), rec)

	require.NoError(t, s.ScheduleNotification("t", "b", t0.Add(time.Minute)))
	require.NoError(t, s.ScheduleNotification("t", "b", t0.Add(time.Hour)))
	s.Stop()
	clk.Advance(2 * time.Hour)

	assert.Empty(t, rec.got)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, clk.Pending())
}

func TestHistory_Capped(t *testing.T) {
	clk := clock.NewFake(t0)
	s := New(true, clk, zerolog.Nop(), &recorder{})

	for i := 0; i < historySize+5; i++ {
		require.NoError(t, s.ScheduleNotification("t", "b", t0))
	}
	clk.Advance(0)
	assert.Len(t, s.History(), historySize)
}

func TestCommand_EmptyArgv(t *testing.T) {
	err := Command{}.Deliver(context.Background(), Notification{})
	assert.ErrorIs(t, err, ErrNoChannel)
}
