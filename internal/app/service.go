package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"

	"solitaire/internal/bot"
	"solitaire/internal/domain"
	"solitaire/internal/ports"
)

// Phase is the engine's scheduling state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseAnimating
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseAnimating:
		return "animating"
	default:
		return "idle"
	}
}

var (
	ErrNoGame          = errors.New("no game in progress")
	ErrEmptyStock      = errors.New("stock and waste are both empty")
	ErrDrawCoolingDown = errors.New("stock is cooling down")
)

const (
	DefaultAnimationDuration = 300 * time.Millisecond
	DefaultDrawCooldown      = 100 * time.Millisecond
)

// Options wires a Service to its collaborators. Timer, Sink and Logger are required.
type Options struct {
	Timer  ports.Timer
	Sink   EventSink
	Logger runtime.Logger

	Rng   *rand.Rand
	Brain bot.Brain

	Animation    time.Duration
	DrawCooldown time.Duration
	AutoMove     bool
	// Lenient logs invariant violations instead of panicking.
	Lenient bool
}

// Service owns one live GameState and applies intents to it. All methods, and every Timer
// callback, must run on a single control flow.
type Service struct {
	timer  ports.Timer
	sink   EventSink
	logger runtime.Logger
	rng    *rand.Rand
	brain  bot.Brain

	drawCooldown time.Duration
	autoMove     bool
	lenient      bool

	state   *domain.GameState
	queue   *AnimationQueue
	phase   Phase
	cooling bool
}

// NewService constructs a Service. A nil Rng is replaced by a time-seeded one.
func NewService(opts Options) *Service {
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Brain == nil {
		opts.Brain, _ = bot.NewBrain(bot.BotLevelSmart)
	}
	s := &Service{
		timer:        opts.Timer,
		sink:         opts.Sink,
		logger:       opts.Logger,
		rng:          opts.Rng,
		brain:        opts.Brain,
		drawCooldown: opts.DrawCooldown,
		autoMove:     opts.AutoMove,
		lenient:      opts.Lenient,
	}
	s.queue = NewAnimationQueue(opts.Timer, opts.Animation)
	s.queue.onStart = s.transitionStarted
	s.queue.onIdle = s.animationsDone
	s.queue.onStale = func() { s.logger.Debug("dropping transition completion from a previous deal") }
	return s
}

// Phase reports the scheduling state.
func (s *Service) Phase() Phase { return s.phase }

// State exposes the live game for read-only use by adapters. Callers must not mutate it.
func (s *Service) State() *domain.GameState { return s.state }

// Won reports whether the current deal has been completed.
func (s *Service) Won() bool { return s.state != nil && domain.IsWon(s.state) }

// NewGame resolves raw into a seed, deals, and returns the seed so it can be shown or replayed.
func (s *Service) NewGame(raw string) int64 {
	seed := ResolveSeed(raw, s.rng)
	s.NewGameWithSeed(seed)
	return seed
}

// NewGameWithSeed discards the current deal, including any queued transitions, and deals seed.
func (s *Service) NewGameWithSeed(seed int64) {
	if dropped := s.queue.Drain(); dropped > 0 {
		s.logger.Debug("new deal discarded %d queued transitions", dropped)
	}
	s.start(domain.DealNewGame(uuid.NewString(), seed))
}

func (s *Service) start(state *domain.GameState) {
	s.phase = PhaseIdle
	s.cooling = false
	s.state = state
	s.logger.WithFields(map[string]interface{}{
		"game_id": state.ID,
		"seed":    state.Seed,
	}).Info("dealt new game")

	s.publish(EventGameStarted, GameStartedPayload{
		GameID: state.ID,
		Seed:   state.Seed,
		Layout: s.Snapshot(),
	})
	s.verify()
	s.requestScan()
}

// DrawFromStock turns the stock top onto the waste, or recycles the waste when the stock is empty.
func (s *Service) DrawFromStock() error {
	if s.state == nil {
		return ErrNoGame
	}
	if s.cooling {
		return ErrDrawCoolingDown
	}
	if s.state.Stock.Len() == 0 && s.state.Waste.Len() == 0 {
		return ErrEmptyStock
	}
	if s.drawCooldown > 0 {
		s.cooling = true
		gameID := s.state.ID
		s.timer.After(s.drawCooldown, func() {
			if s.state != nil && s.state.ID == gameID {
				s.cooling = false
			}
		})
	}

	if card, ok := s.state.DrawToWaste(); ok {
		s.publish(EventCardRelocated, CardRelocatedPayload{Card: card, Pile: domain.PileWaste, Index: s.state.Waste.Len() - 1})
	} else {
		recycled := s.state.RecycleWaste()
		s.publish(EventStockRecycled, StockRecycledPayload{Count: len(recycled)})
	}
	s.verify()
	s.requestScan()
	return nil
}

// AttemptMove moves card, and for tableaus everything above it, onto target.
// Rejections are published as move_rejected and returned.
func (s *Service) AttemptMove(card domain.Card, target domain.PileID) error {
	if s.state == nil {
		return ErrNoGame
	}
	canonical, err := domain.ParsePileID(string(target))
	if err != nil {
		s.logger.Warn("move of %v ignored: %v", card, err)
		s.reject(card, target, err)
		return err
	}
	target = canonical
	source, ok := s.state.FindPile(card)
	if !ok {
		err := fmt.Errorf("%w: %v", domain.ErrCardNotFound, card)
		s.logger.Debug("move of %v rejected: card is in flight", card)
		s.reject(card, target, err)
		return err
	}
	runLength := 1
	if run, ok := s.state.MovableSuffix(source, card); ok {
		runLength = len(run)
	}
	if err := domain.ValidateMove(s.state, source, target, card, runLength); err != nil {
		s.logger.Debug("move %v %s -> %s rejected: %v", card, source, target, err)
		s.reject(card, target, err)
		return err
	}

	run, err := s.state.TakeRun(source, card)
	if err != nil {
		s.reject(card, target, err)
		return err
	}
	first, err := s.state.Place(target, run)
	if err != nil {
		s.reject(card, target, err)
		return err
	}
	for i, c := range run {
		s.publish(EventCardRelocated, CardRelocatedPayload{Card: c, Pile: target, Index: first + i})
	}
	s.revealSource(source)
	s.verify()
	if target.Kind() == domain.KindFoundation {
		s.checkWin()
	}
	s.requestScan()
	return nil
}

// AttemptAutoMoveToFoundation sends card to whichever foundation accepts it, through the
// animation queue. It is the double-activation shortcut.
func (s *Service) AttemptAutoMoveToFoundation(card domain.Card) error {
	if s.state == nil {
		return ErrNoGame
	}
	source, ok := s.state.FindPile(card)
	if !ok {
		err := fmt.Errorf("%w: %v", domain.ErrCardNotFound, card)
		s.reject(card, "", err)
		return err
	}
	target, ok := domain.FoundationFor(s.state, card)
	if !ok {
		err := fmt.Errorf("%w: no foundation accepts %v", domain.ErrInvalidMove, card)
		s.logger.Debug("auto-move of %v rejected", card)
		s.reject(card, "", err)
		return err
	}
	if err := domain.ValidateMove(s.state, source, target, card, 1); err != nil {
		s.logger.Debug("auto-move of %v from %s rejected: %v", card, source, err)
		s.reject(card, target, err)
		return err
	}
	s.launch(card, source, target)
	return nil
}

// ValidTargets lists the piles card could be dropped on right now.
func (s *Service) ValidTargets(card domain.Card) []domain.PileID {
	if s.state == nil {
		return nil
	}
	return domain.ValidTargets(s.state, card)
}

// Hint asks the brain for a suggested move. It never mutates state.
func (s *Service) Hint() (bot.Move, bool) {
	if s.state == nil || domain.IsWon(s.state) {
		return bot.Move{}, false
	}
	return s.brain.Suggest(s.state)
}

// requestScan runs an auto-move scan unless one is already running or a transition is in
// flight. Dropped requests are recovered by the rescan when the queue goes idle.
func (s *Service) requestScan() {
	if s.phase != PhaseIdle {
		s.logger.Debug("auto-move scan dropped while %s", s.phase)
		return
	}
	if !s.autoMove || s.state == nil {
		return
	}
	s.phase = PhaseScanning
	move, ok := domain.FindAutoMove(s.state)
	if !ok {
		s.phase = PhaseIdle
		return
	}
	s.launch(move.Card, move.Source, move.Target)
}

// launch splices the card out of its source and queues its flight to a foundation.
func (s *Service) launch(card domain.Card, source, target domain.PileID) {
	run, err := s.state.TakeRun(source, card)
	if err != nil || len(run) != 1 {
		s.logger.Error("cannot lift %v from %s: %v", card, source, err)
		if s.phase == PhaseScanning {
			s.phase = PhaseIdle
		}
		return
	}
	s.phase = PhaseAnimating
	s.queue.Enqueue(Transition{
		Card: run[0],
		From: source,
		To:   target,
		Land: s.land,
	})
	s.verify()
}

// land completes a queued flight: append to the foundation, reveal the exposed source top,
// then check for a win. A card no foundation accepts any more returns to its source.
func (s *Service) land(t Transition) {
	target := t.To
	f, _ := s.state.GetPile(target)
	if !domain.FoundationAccepts(f, t.Card) {
		redirect, ok := domain.FoundationFor(s.state, t.Card)
		if !ok {
			// The card goes back on top of the pile it left, over anything it had covered.
			s.logger.Warn("no foundation accepts %v any more, returning it to %s", t.Card, t.From)
			index, _ := s.state.Place(t.From, []domain.Card{t.Card})
			s.publish(EventCardRelocated, CardRelocatedPayload{Card: t.Card, Pile: t.From, Index: index})
			s.verify()
			return
		}
		s.logger.Debug("%v redirected from %s to %s", t.Card, target, redirect)
		target = redirect
	}
	index, _ := s.state.Place(target, []domain.Card{t.Card})
	s.publish(EventCardRelocated, CardRelocatedPayload{Card: t.Card, Pile: target, Index: index})
	s.revealSource(t.From)
	s.verify()
	if target.Kind() == domain.KindFoundation {
		s.checkWin()
	}
}

func (s *Service) transitionStarted(t Transition) {
	s.publish(EventTransitionStarted, TransitionStartedPayload{
		Card:     t.Card,
		From:     t.From,
		To:       t.To,
		Duration: s.queue.duration,
	})
}

func (s *Service) animationsDone() {
	s.phase = PhaseIdle
	s.requestScan()
}

func (s *Service) revealSource(source domain.PileID) {
	if card, ok := s.state.RevealTableauTop(source); ok {
		s.publish(EventCardFlipped, CardFlippedPayload{Card: card, Pile: source, FaceUp: true})
	}
}

func (s *Service) checkWin() {
	if !domain.IsWon(s.state) {
		return
	}
	s.logger.WithField("game_id", s.state.ID).Info("game won")
	s.publish(EventGameWon, GameWonPayload{GameID: s.state.ID, Seed: s.state.Seed})
}

func (s *Service) reject(card domain.Card, target domain.PileID, err error) {
	s.publish(EventMoveRejected, MoveRejectedPayload{Card: card, Target: target, Reason: err.Error()})
}

func (s *Service) publish(kind EventKind, payload any) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(Event{Kind: kind, Payload: payload})
}

// verify checks the board invariants, counting cards that are in flight.
func (s *Service) verify() {
	err := s.state.CheckInvariants(s.queue.Cards()...)
	if err == nil {
		return
	}
	if !s.lenient {
		panic(err)
	}
	s.logger.Error("%v", err)
}
