package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solitaire/internal/domain"
)

func TestNewGameDealsAndAnnounces(t *testing.T) {
	h := newHarness(t, nil)

	seed := h.svc.NewGame("42")
	require.Equal(t, int64(42), seed)
	require.Equal(t, []EventKind{EventGameStarted}, h.sink.kinds())

	started := h.sink.events[0].Payload.(GameStartedPayload)
	assert.Equal(t, int64(42), started.Seed)
	_, err := uuid.Parse(started.GameID)
	assert.NoError(t, err)
	require.Len(t, started.Layout.Piles, 2+domain.FoundationCount+domain.TableauCount)
	assert.Equal(t, domain.PileStock, started.Layout.Piles[0].ID)
	assert.Len(t, started.Layout.Piles[0].Cards, domain.StockDealCount)
	assert.False(t, started.Layout.Won)
	assert.Equal(t, PhaseIdle, h.svc.Phase())

	top, _ := h.svc.State().TopCard(domain.TableauID(0))
	assert.Equal(t, up(domain.SuitSpades, 2), top)
}

func TestNewGameGeneratesSeed(t *testing.T) {
	h := newHarness(t, nil)
	seed := h.svc.NewGame("")
	assert.GreaterOrEqual(t, seed, int64(1))
	assert.LessOrEqual(t, seed, int64(MaxGeneratedSeed))
	assert.Equal(t, seed, h.svc.State().Seed)
}

func TestIntentsBeforeFirstDeal(t *testing.T) {
	h := newHarness(t, nil)
	assert.ErrorIs(t, h.svc.DrawFromStock(), ErrNoGame)
	assert.ErrorIs(t, h.svc.AttemptMove(up(domain.SuitHearts, 1), domain.FoundationID(0)), ErrNoGame)
	assert.ErrorIs(t, h.svc.AttemptAutoMoveToFoundation(up(domain.SuitHearts, 1)), ErrNoGame)
	_, ok := h.svc.Hint()
	assert.False(t, ok)
	assert.Empty(t, h.sink.events)
}

func TestDrawFromStockCooldown(t *testing.T) {
	h := newHarness(t, nil)
	h.svc.NewGame("42")
	h.sink.reset()

	require.NoError(t, h.svc.DrawFromStock())
	require.Equal(t, []EventKind{EventCardRelocated}, h.sink.kinds())
	assert.Equal(t, CardRelocatedPayload{Card: up(domain.SuitClubs, 10), Pile: domain.PileWaste, Index: 0}, h.sink.events[0].Payload)

	assert.ErrorIs(t, h.svc.DrawFromStock(), ErrDrawCoolingDown)
	assert.Len(t, h.sink.events, 1, "a draw while cooling down must not emit")

	h.timer.Advance(DefaultDrawCooldown)
	h.sink.reset()
	require.NoError(t, h.svc.DrawFromStock())
	relocated := h.sink.events[0].Payload.(CardRelocatedPayload)
	assert.Equal(t, domain.PileWaste, relocated.Pile)
	assert.Equal(t, 1, relocated.Index)
}

func TestDrawRecyclesWasteInOrder(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.AutoMove = false
		o.DrawCooldown = 0
	})
	h.svc.NewGame("42")
	h.sink.reset()

	var firstPass []domain.Card
	for i := 0; i < domain.StockDealCount; i++ {
		require.NoError(t, h.svc.DrawFromStock())
		firstPass = append(firstPass, h.sink.last().Payload.(CardRelocatedPayload).Card)
	}
	require.NoError(t, h.svc.DrawFromStock())
	assert.Equal(t, Event{Kind: EventStockRecycled, Payload: StockRecycledPayload{Count: domain.StockDealCount}}, h.sink.last())
	assert.Equal(t, 0, h.svc.State().Waste.Len())
	assert.Equal(t, domain.StockDealCount, h.svc.State().Stock.Len())

	for i := 0; i < domain.StockDealCount; i++ {
		require.NoError(t, h.svc.DrawFromStock())
		assert.Equal(t, firstPass[i], h.sink.last().Payload.(CardRelocatedPayload).Card, "draw %d", i)
	}
}

func TestDrawWithNothingLeft(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		for i, suit := range []domain.Suit{domain.SuitHearts, domain.SuitDiamonds, domain.SuitClubs} {
			for r := domain.RankAce; r <= domain.RankKing; r++ {
				s.Foundations[i].Cards = append(s.Foundations[i].Cards, up(suit, r))
			}
		}
		for r := domain.RankAce; r <= domain.RankKing; r++ {
			s.Tableaus[0].Cards = append(s.Tableaus[0].Cards, up(domain.SuitSpades, r))
		}
	}))
	h.sink.reset()

	assert.ErrorIs(t, h.svc.DrawFromStock(), ErrEmptyStock)
	assert.Empty(t, h.sink.events)
}

func TestAttemptMoveRunAndReveal(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Tableaus[0].Cards = []domain.Card{down(domain.SuitClubs, 13), up(domain.SuitHearts, 8), up(domain.SuitSpades, 7)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitSpades, 9)}
	}))
	h.sink.reset()

	require.NoError(t, h.svc.AttemptMove(up(domain.SuitHearts, 8), domain.TableauID(1)))
	assert.Equal(t, []Event{
		{Kind: EventCardRelocated, Payload: CardRelocatedPayload{Card: up(domain.SuitHearts, 8), Pile: domain.TableauID(1), Index: 1}},
		{Kind: EventCardRelocated, Payload: CardRelocatedPayload{Card: up(domain.SuitSpades, 7), Pile: domain.TableauID(1), Index: 2}},
		{Kind: EventCardFlipped, Payload: CardFlippedPayload{Card: up(domain.SuitClubs, 13), Pile: domain.TableauID(0), FaceUp: true}},
	}, h.sink.events)
	assert.Equal(t, []domain.Card{up(domain.SuitClubs, 13)}, h.svc.State().Tableaus[0].Cards)
	assert.Equal(t, PhaseIdle, h.svc.Phase())
}

func TestAttemptMoveRejections(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Tableaus[0].Cards = []domain.Card{down(domain.SuitClubs, 13), up(domain.SuitHearts, 8)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitDiamonds, 9)}
	}))
	before := h.svc.State().Clone()

	tests := []struct {
		name   string
		card   domain.Card
		target domain.PileID
		want   error
	}{
		{name: "same color", card: up(domain.SuitHearts, 8), target: domain.TableauID(1), want: domain.ErrInvalidMove},
		{name: "unknown pile", card: up(domain.SuitHearts, 8), target: "tableau-9", want: domain.ErrUnknownPile},
		{name: "face-down", card: down(domain.SuitClubs, 13), target: domain.TableauID(2), want: domain.ErrCardFaceDown},
		{name: "onto waste", card: up(domain.SuitHearts, 8), target: domain.PileWaste, want: domain.ErrInvalidMove},
		{name: "onto stock", card: up(domain.SuitHearts, 8), target: domain.PileStock, want: domain.ErrInvalidMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.sink.reset()
			err := h.svc.AttemptMove(tt.card, tt.target)
			require.ErrorIs(t, err, tt.want)
			require.Len(t, h.sink.events, 1)
			rejected := h.sink.events[0].Payload.(MoveRejectedPayload)
			assert.Equal(t, EventMoveRejected, h.sink.events[0].Kind)
			assert.Equal(t, tt.target, rejected.Target)
			assert.Equal(t, err.Error(), rejected.Reason)
		})
	}
	assert.Equal(t, before, h.svc.State())
	assert.Len(t, *h.logger.warns, 1, "only the unknown pile is worth a warning")
}

func TestAutoMoveCascadesOneCardAtATime(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Waste.Cards = []domain.Card{up(domain.SuitHearts, 1)}
		s.Tableaus[0].Cards = []domain.Card{down(domain.SuitClubs, 5), up(domain.SuitHearts, 2)}
	}))

	require.Equal(t, []EventKind{EventGameStarted, EventTransitionStarted}, h.sink.kinds())
	assert.Equal(t, TransitionStartedPayload{
		Card: up(domain.SuitHearts, 1), From: domain.PileWaste, To: domain.FoundationID(0), Duration: testAnimation,
	}, h.sink.last().Payload)
	assert.Equal(t, PhaseAnimating, h.svc.Phase())

	// spliced out of the waste but not yet on the foundation
	_, found := h.svc.State().FindPile(up(domain.SuitHearts, 1))
	assert.False(t, found)
	assert.Equal(t, []domain.Card{up(domain.SuitHearts, 1)}, h.svc.Snapshot().InFlight)
	assert.ErrorIs(t, h.svc.AttemptMove(up(domain.SuitHearts, 1), domain.FoundationID(1)), domain.ErrCardNotFound)

	h.sink.reset()
	h.timer.Advance(testAnimation)
	assert.Equal(t, []Event{
		{Kind: EventCardRelocated, Payload: CardRelocatedPayload{Card: up(domain.SuitHearts, 1), Pile: domain.FoundationID(0), Index: 0}},
		{Kind: EventTransitionStarted, Payload: TransitionStartedPayload{
			Card: up(domain.SuitHearts, 2), From: domain.TableauID(0), To: domain.FoundationID(0), Duration: testAnimation,
		}},
	}, h.sink.events)

	h.sink.reset()
	h.timer.Advance(testAnimation)
	assert.Equal(t, []Event{
		{Kind: EventCardRelocated, Payload: CardRelocatedPayload{Card: up(domain.SuitHearts, 2), Pile: domain.FoundationID(0), Index: 1}},
		{Kind: EventCardFlipped, Payload: CardFlippedPayload{Card: up(domain.SuitClubs, 5), Pile: domain.TableauID(0), FaceUp: true}},
	}, h.sink.events)
	assert.Equal(t, PhaseIdle, h.svc.Phase())
	assert.Equal(t, 0, h.timer.Pending())
}

func TestScanRequestsDroppedWhileAnimatingAreRecovered(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Waste.Cards = []domain.Card{up(domain.SuitHearts, 1)}
		s.Tableaus[0].Cards = []domain.Card{up(domain.SuitDiamonds, 1), up(domain.SuitClubs, 9)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitHearts, 10)}
	}))
	require.Equal(t, 1, h.sink.count(EventTransitionStarted))

	// exposes the Ace of diamonds while the Ace of hearts is still in flight
	require.NoError(t, h.svc.AttemptMove(up(domain.SuitClubs, 9), domain.TableauID(1)))
	assert.Equal(t, 1, h.sink.count(EventTransitionStarted), "scan must wait for the flight to land")
	assert.Equal(t, PhaseAnimating, h.svc.Phase())

	h.timer.Advance(testAnimation)
	assert.Equal(t, 2, h.sink.count(EventTransitionStarted))
	assert.Equal(t, TransitionStartedPayload{
		Card: up(domain.SuitDiamonds, 1), From: domain.TableauID(0), To: domain.FoundationID(1), Duration: testAnimation,
	}, h.sink.last().Payload)

	h.timer.Advance(testAnimation)
	assert.Equal(t, PhaseIdle, h.svc.Phase())
	assert.Equal(t, []domain.Card{up(domain.SuitDiamonds, 1)}, h.svc.State().Foundations[1].Cards)
}

func TestLandingRedirectsToAcceptingFoundation(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Waste.Cards = []domain.Card{up(domain.SuitHearts, 1)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitDiamonds, 1)}
	}))
	// the user fills foundation-0 while the Ace of hearts is heading there
	require.NoError(t, h.svc.AttemptMove(up(domain.SuitDiamonds, 1), domain.FoundationID(0)))

	h.sink.reset()
	h.timer.Advance(testAnimation)
	require.NotEmpty(t, h.sink.events)
	assert.Equal(t, Event{Kind: EventCardRelocated, Payload: CardRelocatedPayload{
		Card: up(domain.SuitHearts, 1), Pile: domain.FoundationID(1), Index: 0,
	}}, h.sink.events[0])
	assert.Equal(t, []domain.Card{up(domain.SuitDiamonds, 1)}, h.svc.State().Foundations[0].Cards)
	assert.Equal(t, []domain.Card{up(domain.SuitHearts, 1)}, h.svc.State().Foundations[1].Cards)
}

func TestLandingReturnsCardToSource(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Foundations[0].Cards = []domain.Card{up(domain.SuitHearts, 1)}
		s.Tableaus[0].Cards = []domain.Card{down(domain.SuitDiamonds, 9), up(domain.SuitHearts, 2)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitClubs, 2)}
	}))
	require.Equal(t, 1, h.sink.count(EventTransitionStarted))

	// pull the Ace back down while its Two is in flight
	require.NoError(t, h.svc.AttemptMove(up(domain.SuitHearts, 1), domain.TableauID(1)))

	h.sink.reset()
	h.timer.Advance(testAnimation)
	require.NotEmpty(t, h.sink.events)
	assert.Equal(t, Event{Kind: EventCardRelocated, Payload: CardRelocatedPayload{
		Card: up(domain.SuitHearts, 2), Pile: domain.TableauID(0), Index: 1,
	}}, h.sink.events[0])
	assert.Zero(t, h.sink.count(EventCardFlipped), "the covered card stays hidden")
	assert.Equal(t, []domain.Card{down(domain.SuitDiamonds, 9), up(domain.SuitHearts, 2)}, h.svc.State().Tableaus[0].Cards)
	assert.Empty(t, h.svc.State().Waste.Cards)
	assert.Len(t, *h.logger.warns, 1)
	assert.NoError(t, h.svc.State().CheckInvariants(h.svc.queue.Cards()...))
}

func TestAttemptMoveCanonicalizesTarget(t *testing.T) {
	for _, raw := range []string{"tableau-01", " tableau-+1"} {
		t.Run(raw, func(t *testing.T) {
			h := newHarness(t, func(o *Options) { o.AutoMove = false })
			h.load(board(func(s *domain.GameState) {
				s.Tableaus[0].Cards = []domain.Card{up(domain.SuitHearts, 8)}
				s.Tableaus[1].Cards = []domain.Card{up(domain.SuitSpades, 9)}
			}))
			h.sink.reset()

			require.NoError(t, h.svc.AttemptMove(up(domain.SuitHearts, 8), domain.PileID(raw)))
			assert.Equal(t, []Event{{Kind: EventCardRelocated, Payload: CardRelocatedPayload{
				Card: up(domain.SuitHearts, 8), Pile: domain.TableauID(1), Index: 1,
			}}}, h.sink.events)
		})
	}

	h := newHarness(t, nil)
	h.load(board(func(*domain.GameState) {}))
	h.sink.reset()
	err := h.svc.AttemptMove(up(domain.SuitHearts, 8), "tableau-x")
	assert.ErrorIs(t, err, domain.ErrUnknownPile)
	assert.Equal(t, EventMoveRejected, h.sink.last().Kind)
	assert.Len(t, *h.logger.warns, 1)
}

func TestDoubleActivationQueuesBehindFlight(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.AutoMove = false })
	h.load(board(func(s *domain.GameState) {
		s.Tableaus[0].Cards = []domain.Card{up(domain.SuitHearts, 1)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitSpades, 1)}
		s.Tableaus[2].Cards = []domain.Card{up(domain.SuitClubs, 9)}
	}))
	h.sink.reset()

	assert.ErrorIs(t, h.svc.AttemptAutoMoveToFoundation(up(domain.SuitClubs, 9)), domain.ErrInvalidMove)
	h.sink.reset()

	require.NoError(t, h.svc.AttemptAutoMoveToFoundation(up(domain.SuitHearts, 1)))
	require.NoError(t, h.svc.AttemptAutoMoveToFoundation(up(domain.SuitSpades, 1)))
	assert.Equal(t, []EventKind{EventTransitionStarted}, h.sink.kinds(), "second flight waits its turn")
	assert.Equal(t, 2, h.svc.queue.Len())

	h.timer.Advance(testAnimation)
	assert.Equal(t, []EventKind{EventTransitionStarted, EventCardRelocated, EventTransitionStarted}, h.sink.kinds())

	h.timer.Advance(testAnimation)
	assert.Equal(t, []domain.Card{up(domain.SuitHearts, 1)}, h.svc.State().Foundations[0].Cards)
	assert.Equal(t, []domain.Card{up(domain.SuitSpades, 1)}, h.svc.State().Foundations[1].Cards)
	assert.Equal(t, PhaseIdle, h.svc.Phase())
}

func TestNewGameDiscardsQueuedTransitions(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Waste.Cards = []domain.Card{up(domain.SuitHearts, 1)}
	}))
	require.Equal(t, PhaseAnimating, h.svc.Phase())

	h.svc.NewGameWithSeed(42)
	h.sink.reset()
	h.timer.Advance(testAnimation)

	assert.Empty(t, h.sink.events, "a stale completion must not touch the new deal")
	assert.Equal(t, PhaseIdle, h.svc.Phase())
	for i := range h.svc.State().Foundations {
		assert.Zero(t, h.svc.State().Foundations[i].Len())
	}
	assert.NoError(t, h.svc.State().CheckInvariants())
}

func TestInvariantViolationStrictPanics(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.DrawCooldown = 0 })
	h.svc.NewGame("42")
	h.svc.State().Stock.Cards = h.svc.State().Stock.Cards[1:]

	assert.Panics(t, func() { _ = h.svc.DrawFromStock() })
}

func TestInvariantViolationLenientLogs(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.DrawCooldown = 0
		o.Lenient = true
	})
	h.svc.NewGame("42")
	h.svc.State().Stock.Cards = h.svc.State().Stock.Cards[1:]

	assert.NotPanics(t, func() { _ = h.svc.DrawFromStock() })
	assert.Len(t, *h.logger.errors, 1)
}

func TestValidTargetsAndHint(t *testing.T) {
	h := newHarness(t, nil)
	h.load(board(func(s *domain.GameState) {
		s.Tableaus[0].Cards = []domain.Card{down(domain.SuitClubs, 4), up(domain.SuitHearts, 8)}
		s.Tableaus[1].Cards = []domain.Card{up(domain.SuitSpades, 9)}
	}))

	assert.Equal(t, []domain.PileID{domain.TableauID(1)}, h.svc.ValidTargets(up(domain.SuitHearts, 8)))

	before := h.svc.State().Clone()
	hint, ok := h.svc.Hint()
	require.True(t, ok)
	assert.Equal(t, up(domain.SuitHearts, 8), hint.Card)
	assert.Equal(t, domain.TableauID(1), hint.Target)
	assert.Equal(t, before, h.svc.State())
}

// solvedDeck orders a deck so that dealing it leaves ranks 1..7 stacked lowest-on-top across the
// tableaus and ranks 8..13 in the stock in draw order. Auto-move alone then finishes the game.
func solvedDeck() []domain.Card {
	var low, high []domain.Card
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		for _, suit := range domain.Suits {
			if r <= 7 {
				low = append(low, domain.Card{Suit: suit, Rank: r})
			} else {
				high = append(high, domain.Card{Suit: suit, Rank: r})
			}
		}
	}

	// column j takes the next j+1 cards from the top of the descending list, bottom first
	var tableaus [domain.TableauCount][]domain.Card
	next := len(low) - 1
	for j := 0; j < domain.TableauCount; j++ {
		for k := 0; k <= j; k++ {
			tableaus[j] = append(tableaus[j], low[next])
			next--
		}
	}

	deck := make([]domain.Card, domain.DeckSize)
	for k, c := range high {
		deck[domain.StockDealCount-1-k] = c
	}
	pop := 0
	for i := 0; i < domain.TableauCount; i++ {
		for j := i; j < domain.TableauCount; j++ {
			deck[domain.DeckSize-1-pop] = tableaus[j][i]
			pop++
		}
	}
	return deck
}

func TestEndToEndWinFiresOnce(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.DrawCooldown = 0 })
	h.load(domain.DealFromDeck("fixture", 0, solvedDeck()))

	h.timer.Flush(1000)
	for i := range h.svc.State().Tableaus {
		require.Zero(t, h.svc.State().Tableaus[i].Len(), "tableau %d should have cascaded", i)
	}
	for i := range h.svc.State().Foundations {
		require.Equal(t, 7, h.svc.State().Foundations[i].Len())
	}

	for i := 0; i < domain.StockDealCount; i++ {
		require.NoError(t, h.svc.DrawFromStock())
		h.timer.Flush(1000)
	}

	assert.Equal(t, 1, h.sink.count(EventGameWon))
	assert.True(t, h.svc.Won())
	for i := range h.svc.State().Foundations {
		f := h.svc.State().Foundations[i]
		top, _ := f.Top()
		assert.Equal(t, 13, f.Len())
		assert.Equal(t, domain.RankKing, top.Rank)
	}
	_, ok := h.svc.Hint()
	assert.False(t, ok)
	assert.Equal(t, PhaseIdle, h.svc.Phase())
}
