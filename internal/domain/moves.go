package domain

import "fmt"

// TakeRun removes card and, for tableaus, everything above it. The run must be movable.
func (s *GameState) TakeRun(source PileID, card Card) ([]Card, error) {
	p, err := s.GetPile(source)
	if err != nil {
		return nil, err
	}
	if _, ok := s.MovableSuffix(source, card); !ok {
		if p.IndexOf(card) < 0 {
			return nil, fmt.Errorf("%w: %v not in %s", ErrCardNotFound, card, source)
		}
		return nil, fmt.Errorf("%w: %v is not movable from %s", ErrInvalidMove, card, source)
	}
	return p.removeRun(p.IndexOf(card)), nil
}

// Place appends cards to the target in order and returns the index of the first one.
func (s *GameState) Place(target PileID, cards []Card) (int, error) {
	p, err := s.GetPile(target)
	if err != nil {
		return 0, err
	}
	first := len(p.Cards)
	p.Cards = append(p.Cards, cards...)
	return first, nil
}

// RevealTableauTop turns a face-down tableau top face-up. It reports the flipped card.
func (s *GameState) RevealTableauTop(id PileID) (Card, bool) {
	if id.Kind() != KindTableau {
		return Card{}, false
	}
	p := &s.Tableaus[id.Index()]
	if len(p.Cards) == 0 || p.Cards[len(p.Cards)-1].FaceUp {
		return Card{}, false
	}
	p.Cards[len(p.Cards)-1].FaceUp = true
	return p.Cards[len(p.Cards)-1], true
}

// DrawToWaste moves the stock top face-up onto the waste.
func (s *GameState) DrawToWaste() (Card, bool) {
	if len(s.Stock.Cards) == 0 {
		return Card{}, false
	}
	card := s.Stock.Cards[len(s.Stock.Cards)-1]
	s.Stock.Cards = s.Stock.Cards[:len(s.Stock.Cards)-1]
	card.FaceUp = true
	s.Waste.Cards = append(s.Waste.Cards, card)
	return card, true
}

// RecycleWaste turns the waste over into the stock: the order is reversed so the card drawn
// first is drawn first again, and every card is turned face-down. No shuffling happens.
func (s *GameState) RecycleWaste() []Card {
	n := len(s.Waste.Cards)
	stock := make([]Card, n)
	for i, c := range s.Waste.Cards {
		c.FaceUp = false
		stock[n-1-i] = c
	}
	s.Stock.Cards = append(s.Stock.Cards, stock...)
	s.Waste.Cards = nil
	return stock
}
