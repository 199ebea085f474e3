package app

import (
	"time"

	"solitaire/internal/domain"
	"solitaire/internal/ports"
)

// Transition is one queued card flight. Land runs when the flight completes and performs the
// model append for the card.
type Transition struct {
	Card domain.Card
	From domain.PileID
	To   domain.PileID
	Land func(Transition)
}

// AnimationQueue runs transitions strictly one at a time in FIFO order. Each completion runs
// its Land callback before the next transition starts. Drain invalidates everything queued,
// including the flight in progress, so a late timer callback cannot touch a newer game.
type AnimationQueue struct {
	timer    ports.Timer
	duration time.Duration

	pending    []Transition
	current    *Transition
	generation uint64

	onStart func(Transition)
	onIdle  func()
	onStale func()
}

func NewAnimationQueue(timer ports.Timer, duration time.Duration) *AnimationQueue {
	return &AnimationQueue{timer: timer, duration: duration}
}

// Enqueue appends a transition and starts it if nothing is in flight.
func (q *AnimationQueue) Enqueue(t Transition) {
	q.pending = append(q.pending, t)
	if q.current == nil {
		q.startNext()
	}
}

// Len counts the in-flight transition plus everything waiting behind it.
func (q *AnimationQueue) Len() int {
	n := len(q.pending)
	if q.current != nil {
		n++
	}
	return n
}

// Cards lists every card that has left its pile but not landed yet.
func (q *AnimationQueue) Cards() []domain.Card {
	out := make([]domain.Card, 0, q.Len())
	if q.current != nil {
		out = append(out, q.current.Card)
	}
	for _, t := range q.pending {
		out = append(out, t.Card)
	}
	return out
}

// Drain discards all transitions without landing them and returns how many were dropped.
func (q *AnimationQueue) Drain() int {
	n := q.Len()
	q.pending = nil
	q.current = nil
	q.generation++
	return n
}

func (q *AnimationQueue) startNext() {
	if len(q.pending) == 0 {
		return
	}
	t := q.pending[0]
	q.pending = q.pending[1:]
	q.current = &t
	gen := q.generation
	if q.onStart != nil {
		q.onStart(t)
	}
	q.timer.After(q.duration, func() { q.complete(gen) })
}

func (q *AnimationQueue) complete(gen uint64) {
	if gen != q.generation || q.current == nil {
		if q.onStale != nil {
			q.onStale()
		}
		return
	}
	t := *q.current
	q.current = nil
	if t.Land != nil {
		t.Land(t)
	}
	// Land may have drained the queue or started a flight of its own.
	if gen != q.generation || q.current != nil {
		return
	}
	if len(q.pending) > 0 {
		q.startNext()
		return
	}
	if q.onIdle != nil {
		q.onIdle()
	}
}
