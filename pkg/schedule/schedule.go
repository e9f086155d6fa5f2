// Package schedule provides the timing primitives used by the page: a Clock
// seam over time.AfterFunc, a deterministic ManualClock for tests, a Task that
// owns a single pending callback slot, and a Loop that serialises callbacks so
// timers never run concurrently with event handlers.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks after a delay.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Loop runs functions one at a time.
type Loop struct {
	mu sync.Mutex
}

// Do runs fn while holding the loop. Calls must not nest.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Clock wraps base so every callback it fires runs inside the loop.
func (l *Loop) Clock(base Clock) Clock {
	return loopClock{loop: l, base: base}
}

type loopClock struct {
	loop *Loop
	base Clock
}

func (c loopClock) AfterFunc(d time.Duration, fn func()) Timer {
	return c.base.AfterFunc(d, func() { c.loop.Do(fn) })
}

// Task holds at most one pending callback. Scheduling again replaces the
// pending callback, which is what debouncing needs.
type Task struct {
	clock Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewTask returns a task driven by clock.
func NewTask(clock Clock) *Task {
	if clock == nil {
		clock = RealClock()
	}
	return &Task{clock: clock}
}

// Schedule cancels any pending callback and arranges for fn to run after d.
func (t *Task) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen || t.timer == nil {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, reporting whether one was pending.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	return true
}

// Pending reports whether a callback is waiting to fire.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// ManualClock is a Clock whose time only moves when Advance is called.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

// NewManualClock returns a clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

type manualTimer struct {
	clock *ManualClock
	at    time.Duration
	seq   uint64
	fn    func()
}

func (m *manualTimer) Stop() bool {
	m.clock.mu.Lock()
	defer m.clock.mu.Unlock()
	for i, p := range m.clock.pending {
		if p == m {
			m.clock.pending = append(m.clock.pending[:i], m.clock.pending[i+1:]...)
			return true
		}
	}
	return false
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, fn: fn}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves time forward by d, firing due callbacks in deadline order on
// the calling goroutine. Callbacks scheduled while advancing fire too when
// they fall inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.pending, func(i, j int) bool {
			if c.pending[i].at == c.pending[j].at {
				return c.pending[i].seq < c.pending[j].seq
			}
			return c.pending[i].at < c.pending[j].at
		})
		if len(c.pending) == 0 || c.pending[0].at > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

// Pending returns the number of scheduled callbacks.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
