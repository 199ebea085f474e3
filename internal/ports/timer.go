package ports

import (
	"sort"
	"time"
)

// Timer schedules a callback after a nominal duration. Implementations must never run fn
// synchronously inside After, and must run callbacks on the engine's own control flow.
type Timer interface {
	After(d time.Duration, fn func())
}

// TickTimer is a Timer driven by explicit clock advances rather than wall time. Nakama match
// loops advance it once per tick; tests advance it by hand.
type TickTimer struct {
	now     time.Duration
	seq     uint64
	pending []scheduled
}

type scheduled struct {
	at  time.Duration
	seq uint64
	fn  func()
}

func NewTickTimer() *TickTimer {
	return &TickTimer{}
}

func (t *TickTimer) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	t.seq++
	t.pending = append(t.pending, scheduled{at: t.now + d, seq: t.seq, fn: fn})
}

// Advance moves the clock forward by d and runs every callback that came due, in deadline
// order. Callbacks scheduled while advancing run in the same call if they fall due.
func (t *TickTimer) Advance(d time.Duration) int {
	t.now += d
	fired := 0
	for {
		next, ok := t.popDue()
		if !ok {
			return fired
		}
		next.fn()
		fired++
	}
}

// Flush runs callbacks until nothing is pending, jumping the clock to each deadline.
// It stops after limit callbacks to guard against self-rescheduling loops.
func (t *TickTimer) Flush(limit int) int {
	fired := 0
	for fired < limit && len(t.pending) > 0 {
		t.sort()
		if t.pending[0].at > t.now {
			t.now = t.pending[0].at
		}
		fired += t.Advance(0)
	}
	return fired
}

// Pending reports how many callbacks are waiting.
func (t *TickTimer) Pending() int {
	return len(t.pending)
}

// Now is the timer's elapsed virtual time.
func (t *TickTimer) Now() time.Duration {
	return t.now
}

func (t *TickTimer) popDue() (scheduled, bool) {
	if len(t.pending) == 0 {
		return scheduled{}, false
	}
	t.sort()
	if t.pending[0].at > t.now {
		return scheduled{}, false
	}
	next := t.pending[0]
	t.pending = t.pending[1:]
	return next, true
}

func (t *TickTimer) sort() {
	sort.Slice(t.pending, func(i, j int) bool {
		if t.pending[i].at != t.pending[j].at {
			return t.pending[i].at < t.pending[j].at
		}
		return t.pending[i].seq < t.pending[j].seq
	})
}
