package domain

// AutoMove is a card the cascade rule would send to a foundation.
type AutoMove struct {
	Card   Card
	Source PileID
	Target PileID
}

// FindAutoMove scans the waste top and then tableau tops 0..6 and returns the first card that
// may safely cascade to a foundation:
//   - an Ace goes to the lowest-index empty foundation;
//   - a 2 goes onto the foundation holding only its Ace;
//   - anything higher needs all four foundations started and a rank no more than one above the
//     lowest foundation top, and goes onto its own suit's foundation.
func FindAutoMove(s *GameState) (AutoMove, bool) {
	candidates := make([]*Pile, 0, 1+TableauCount)
	candidates = append(candidates, &s.Waste)
	for i := range s.Tableaus {
		candidates = append(candidates, &s.Tableaus[i])
	}
	for _, p := range candidates {
		card, ok := p.Top()
		if !ok || !card.FaceUp {
			continue
		}
		if target, ok := autoMoveTarget(s, card); ok {
			return AutoMove{Card: card, Source: p.ID, Target: target}, true
		}
	}
	return AutoMove{}, false
}

func autoMoveTarget(s *GameState, card Card) (PileID, bool) {
	switch {
	case card.Rank == RankAce:
		for i := range s.Foundations {
			if s.Foundations[i].Len() == 0 {
				return s.Foundations[i].ID, true
			}
		}
		return "", false
	case card.Rank == 2:
		for i := range s.Foundations {
			f := &s.Foundations[i]
			if f.Len() == 1 && f.Cards[0].Suit == card.Suit {
				return f.ID, true
			}
		}
		return "", false
	}

	lowest := RankKing
	for i := range s.Foundations {
		top, ok := s.Foundations[i].Top()
		if !ok {
			return "", false
		}
		if top.Rank < lowest {
			lowest = top.Rank
		}
	}
	if card.Rank > lowest+1 {
		return "", false
	}
	return FoundationFor(s, card)
}

// FoundationFor returns the first foundation that accepts card, if any.
func FoundationFor(s *GameState, card Card) (PileID, bool) {
	for i := range s.Foundations {
		if FoundationAccepts(&s.Foundations[i], card) {
			return s.Foundations[i].ID, true
		}
	}
	return "", false
}
