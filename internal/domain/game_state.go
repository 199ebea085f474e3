package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrCardFaceDown       = errors.New("card is face-down")
	ErrInvariantViolation = errors.New("invariant violation")
)

// DealNewGame builds a full deck, shuffles it with seed and deals the classic layout.
func DealNewGame(id string, seed int64) *GameState {
	return DealFromDeck(id, seed, Shuffle(NewDeck(), seed))
}

// DealFromDeck deals an already ordered deck. Cards are taken from the end of the slice:
// round i gives one card to each tableau i..6, face-up only when it lands on tableau i.
// The remaining cards become the stock, face-down, with the last element on top.
func DealFromDeck(id string, seed int64, deck []Card) *GameState {
	s := NewGameState(id, seed)
	remaining := append([]Card(nil), deck...)
	for i := 0; i < TableauCount; i++ {
		for j := i; j < TableauCount; j++ {
			card := remaining[len(remaining)-1]
			remaining = remaining[:len(remaining)-1]
			card.FaceUp = i == j
			s.Tableaus[j].Cards = append(s.Tableaus[j].Cards, card)
		}
	}
	for k := range remaining {
		remaining[k].FaceUp = false
	}
	s.Stock.Cards = remaining
	return s
}

// GetPile resolves an id to its pile.
func (s *GameState) GetPile(id PileID) (*Pile, error) {
	switch id.Kind() {
	case KindStock:
		return &s.Stock, nil
	case KindWaste:
		return &s.Waste, nil
	case KindFoundation:
		return &s.Foundations[id.Index()], nil
	case KindTableau:
		return &s.Tableaus[id.Index()], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPile, string(id))
}

// FindPile returns the pile currently holding the card.
func (s *GameState) FindPile(card Card) (PileID, bool) {
	for _, p := range s.Piles() {
		if p.IndexOf(card) >= 0 {
			return p.ID, true
		}
	}
	return "", false
}

// TopCard returns the top card of a pile.
func (s *GameState) TopCard(id PileID) (Card, bool) {
	p, err := s.GetPile(id)
	if err != nil {
		return Card{}, false
	}
	return p.Top()
}

// MovableSuffix returns the run that would travel with card. For tableaus this is the card and
// everything above it, provided all of it is face-up. For other piles only the top card qualifies.
func (s *GameState) MovableSuffix(id PileID, card Card) ([]Card, bool) {
	p, err := s.GetPile(id)
	if err != nil {
		return nil, false
	}
	idx := p.IndexOf(card)
	if idx < 0 {
		return nil, false
	}
	if id.Kind() != KindTableau {
		if idx != len(p.Cards)-1 || !p.Cards[idx].FaceUp {
			return nil, false
		}
		return []Card{p.Cards[idx]}, true
	}
	for _, c := range p.Cards[idx:] {
		if !c.FaceUp {
			return nil, false
		}
	}
	return append([]Card(nil), p.Cards[idx:]...), true
}

// Clone returns a deep copy suitable for handing to readers outside the engine.
func (s *GameState) Clone() *GameState {
	out := NewGameState(s.ID, s.Seed)
	src, dst := s.Piles(), out.Piles()
	for i := range src {
		dst[i].Cards = append([]Card(nil), src[i].Cards...)
	}
	return out
}

// CheckInvariants verifies conservation of the deck, foundation ordering and stock orientation.
// inFlight lists cards that have left a pile but not yet landed on another.
func (s *GameState) CheckInvariants(inFlight ...Card) error {
	seen := make(map[Card]PileID, DeckSize)
	note := func(c Card, where PileID) error {
		key := Card{Suit: c.Suit, Rank: c.Rank}
		if !c.Suit.Valid() || !c.Rank.Valid() {
			return fmt.Errorf("%w: malformed card %v in %s", ErrInvariantViolation, c, where)
		}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: %v in both %s and %s", ErrInvariantViolation, key, prev, where)
		}
		seen[key] = where
		return nil
	}

	for _, p := range s.Piles() {
		for _, c := range p.Cards {
			if err := note(c, p.ID); err != nil {
				return err
			}
		}
	}
	for _, c := range inFlight {
		if err := note(c, "in-flight"); err != nil {
			return err
		}
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("%w: %d distinct cards, want %d", ErrInvariantViolation, len(seen), DeckSize)
	}

	for _, c := range s.Stock.Cards {
		if c.FaceUp {
			return fmt.Errorf("%w: face-up %v in stock", ErrInvariantViolation, c)
		}
	}
	for i := range s.Foundations {
		f := &s.Foundations[i]
		for k, c := range f.Cards {
			if c.Rank != Rank(k+1) || c.Suit != f.Cards[0].Suit {
				return fmt.Errorf("%w: %s out of sequence at %d (%v)", ErrInvariantViolation, f.ID, k, c)
			}
		}
	}
	return nil
}
