package app

import (
	"time"

	"solitaire/internal/domain"
)

// EventKind identifies notifications emitted to the presentation layer.
type EventKind string

const (
	EventGameStarted       EventKind = "game_started"
	EventCardRelocated     EventKind = "card_relocated"
	EventCardFlipped       EventKind = "card_flipped"
	EventStockRecycled     EventKind = "stock_recycled"
	EventTransitionStarted EventKind = "transition_started"
	EventGameWon           EventKind = "game_won"
	EventMoveRejected      EventKind = "move_rejected"
)

// Event is a notification with a kind-specific payload.
type Event struct {
	Kind    EventKind
	Payload any
}

// EventSink consumes engine notifications. Publish is called on the engine's control flow.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

type GameStartedPayload struct {
	GameID string
	Seed   int64
	Layout Snapshot
}

// CardRelocatedPayload reports a card resting at Index within Pile.
type CardRelocatedPayload struct {
	Card  domain.Card
	Pile  domain.PileID
	Index int
}

type CardFlippedPayload struct {
	Card   domain.Card
	Pile   domain.PileID
	FaceUp bool
}

type StockRecycledPayload struct {
	Count int
}

// TransitionStartedPayload asks the presentation to animate Card for Duration. The engine
// lands the card when the duration elapses.
type TransitionStartedPayload struct {
	Card     domain.Card
	From     domain.PileID
	To       domain.PileID
	Duration time.Duration
}

type GameWonPayload struct {
	GameID string
	Seed   int64
}

type MoveRejectedPayload struct {
	Card   domain.Card
	Target domain.PileID
	Reason string
}
