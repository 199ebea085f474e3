package app

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"solitaire/internal/domain"
	"solitaire/internal/ports"
)

const testAnimation = 300 * time.Millisecond

// testLogger implements runtime.Logger and keeps warnings and errors for assertions.
type testLogger struct {
	warns  *[]string
	errors *[]string
}

func newTestLogger() testLogger {
	return testLogger{warns: new([]string), errors: new([]string)}
}

func (l testLogger) Debug(string, ...interface{}) {}
func (l testLogger) Info(string, ...interface{})  {}
func (l testLogger) Warn(format string, v ...interface{}) {
	*l.warns = append(*l.warns, fmt.Sprintf(format, v...))
}
func (l testLogger) Error(format string, v ...interface{}) {
	*l.errors = append(*l.errors, fmt.Sprintf(format, v...))
}
func (l testLogger) WithField(string, interface{}) runtime.Logger     { return l }
func (l testLogger) WithFields(map[string]interface{}) runtime.Logger { return l }
func (l testLogger) Fields() map[string]interface{}                   { return nil }

// recordingSink keeps every published event in order.
type recordingSink struct {
	events []Event
}

func (r *recordingSink) Publish(e Event) { r.events = append(r.events, e) }

func (r *recordingSink) kinds() []EventKind {
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recordingSink) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingSink) last() Event {
	return r.events[len(r.events)-1]
}

func (r *recordingSink) reset() { r.events = nil }

type harness struct {
	svc    *Service
	timer  *ports.TickTimer
	sink   *recordingSink
	logger testLogger
}

func newHarness(t *testing.T, tweak func(*Options)) *harness {
	t.Helper()
	h := &harness{timer: ports.NewTickTimer(), sink: &recordingSink{}, logger: newTestLogger()}
	opts := Options{
		Timer:        h.timer,
		Sink:         h.sink,
		Logger:       h.logger,
		Rng:          rand.New(rand.NewSource(1)),
		Animation:    testAnimation,
		DrawCooldown: DefaultDrawCooldown,
		AutoMove:     true,
	}
	if tweak != nil {
		tweak(&opts)
	}
	h.svc = NewService(opts)
	return h
}

// load installs a hand-built board and runs the usual post-deal steps.
func (h *harness) load(st *domain.GameState) {
	h.svc.start(st)
}

func up(s domain.Suit, r domain.Rank) domain.Card   { return domain.Card{Suit: s, Rank: r, FaceUp: true} }
func down(s domain.Suit, r domain.Rank) domain.Card { return domain.Card{Suit: s, Rank: r} }

// board builds a legal position: setup places the interesting cards and every card it did not
// mention goes face-down into the stock.
func board(setup func(s *domain.GameState)) *domain.GameState {
	st := domain.NewGameState("test", 1)
	setup(st)
	var rest []domain.Card
	for _, c := range domain.NewDeck() {
		if _, ok := st.FindPile(c); !ok {
			c.FaceUp = false
			rest = append(rest, c)
		}
	}
	st.Stock.Cards = append(rest, st.Stock.Cards...)
	return st
}
