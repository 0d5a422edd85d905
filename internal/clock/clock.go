// Package clock provides wall-clock time and deferred callbacks behind an
// interface so timers can be redirected onto an event loop or driven by hand
// in tests.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the process wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, f)
}

// Dispatch wraps a clock so that callbacks are handed to Post instead of
// running on the timer goroutine. A timer stopped after its callback was
// posted but before Post ran it still does not run.
type Dispatch struct {
	Clock Clock
	Post  func(func())
}

func (d Dispatch) Now() time.Time { return d.Clock.Now() }

func (d Dispatch) AfterFunc(dur time.Duration, f func()) Timer {
	t := &dispatchTimer{}
	t.inner = d.Clock.AfterFunc(dur, func() {
		d.Post(func() {
			if t.stopped.Load() {
				return
			}
			f()
		})
	})
	return t
}

type dispatchTimer struct {
	inner   Timer
	stopped atomic.Bool
}

func (t *dispatchTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	return t.inner.Stop()
}

// Fake is a manually advanced clock. Callbacks only run from Advance, on the
// caller's goroutine, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f, seq: c.seq}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that falls due
// on the way, in deadline order. The clock reads each callback's deadline while
// it runs, so timers registered from a callback are measured from there and
// fire during this call if they land before the target.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.done || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.prune()
			c.mu.Unlock()
			return
		}
		next.done = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// prune drops finished timers. Caller holds mu.
func (c *Fake) prune() {
	kept := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			kept = append(kept, t)
		}
	}
	c.timers = kept
}

type fakeTimer struct {
	clock *Fake
	at    time.Time
	fn    func()
	seq   int
	done  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
