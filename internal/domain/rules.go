package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when a proposed move breaks a placement rule.
var ErrInvalidMove = errors.New("invalid move")

// ValidateMove checks a proposed move against the current piles without mutating them.
// runLength is the number of cards travelling together (1 for a single card).
func ValidateMove(s *GameState, source, target PileID, card Card, runLength int) error {
	src, err := s.GetPile(source)
	if err != nil {
		return err
	}
	dst, err := s.GetPile(target)
	if err != nil {
		return err
	}
	if source == target {
		return fmt.Errorf("%w: source and target are the same pile", ErrInvalidMove)
	}
	idx := src.IndexOf(card)
	if idx < 0 {
		return fmt.Errorf("%w: %v not in %s", ErrCardNotFound, card, source)
	}
	if !src.Cards[idx].FaceUp {
		return fmt.Errorf("%w: %v", ErrCardFaceDown, card)
	}
	if _, ok := s.MovableSuffix(source, card); !ok {
		return fmt.Errorf("%w: %v is not movable from %s", ErrInvalidMove, card, source)
	}
	if runLength < 1 {
		return fmt.Errorf("%w: empty run", ErrInvalidMove)
	}

	switch target.Kind() {
	case KindFoundation:
		if runLength > 1 {
			return fmt.Errorf("%w: only single cards go to a foundation", ErrInvalidMove)
		}
		if !FoundationAccepts(dst, card) {
			return fmt.Errorf("%w: %v does not extend %s", ErrInvalidMove, card, target)
		}
		return nil
	case KindTableau:
		if !TableauAccepts(dst, card) {
			return fmt.Errorf("%w: %v does not build on %s", ErrInvalidMove, card, target)
		}
		return nil
	}
	return fmt.Errorf("%w: %s is not a destination", ErrInvalidMove, target)
}

// IsValidMove reports whether ValidateMove accepts the move.
func IsValidMove(s *GameState, source, target PileID, card Card, runLength int) bool {
	return ValidateMove(s, source, target, card, runLength) == nil
}

// FoundationAccepts applies the foundation rule: an Ace on an empty pile, otherwise the same
// suit one rank higher. A King on a Queen is covered by the general rule.
func FoundationAccepts(f *Pile, card Card) bool {
	top, ok := f.Top()
	if !ok {
		return card.Rank == RankAce
	}
	return card.Suit == top.Suit && card.Rank == top.Rank+1
}

// TableauAccepts applies the tableau rule: a King on an empty pile, otherwise opposite color
// one rank lower.
func TableauAccepts(t *Pile, card Card) bool {
	top, ok := t.Top()
	if !ok {
		return card.Rank == RankKing
	}
	return top.FaceUp && card.Color() != top.Color() && card.Rank == top.Rank-1
}

// ValidTargets lists every foundation and tableau the card (with its run) could land on.
func ValidTargets(s *GameState, card Card) []PileID {
	source, ok := s.FindPile(card)
	if !ok {
		return nil
	}
	run, ok := s.MovableSuffix(source, card)
	if !ok {
		return nil
	}
	var out []PileID
	for i := 0; i < FoundationCount; i++ {
		if IsValidMove(s, source, FoundationID(i), card, len(run)) {
			out = append(out, FoundationID(i))
		}
	}
	for i := 0; i < TableauCount; i++ {
		if IsValidMove(s, source, TableauID(i), card, len(run)) {
			out = append(out, TableauID(i))
		}
	}
	return out
}

// IsWon reports whether every foundation holds thirteen cards topped by a King.
func IsWon(s *GameState) bool {
	for i := range s.Foundations {
		top, ok := s.Foundations[i].Top()
		if s.Foundations[i].Len() != int(RankKing) || !ok || top.Rank != RankKing {
			return false
		}
	}
	return true
}
