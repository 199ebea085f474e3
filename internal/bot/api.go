package bot

import (
	"solitaire/internal/domain"
)

// MoveKind distinguishes card moves from stock activations.
type MoveKind string

const (
	MoveCard MoveKind = "move"
	MoveDraw MoveKind = "draw"
)

// Category ranks why a move is worth making.
type Category int

const (
	CategoryDraw Category = iota
	CategoryBuild
	CategoryReveal
	CategoryFoundation
)

func (c Category) String() string {
	switch c {
	case CategoryFoundation:
		return "foundation"
	case CategoryReveal:
		return "reveal"
	case CategoryBuild:
		return "build"
	default:
		return "draw"
	}
}

// Move represents the decision made by the advisor.
type Move struct {
	Kind     MoveKind
	Card     domain.Card
	Source   domain.PileID
	Target   domain.PileID
	Category Category
}

// Brain is the interface that all hint strategies must implement.
type Brain interface {
	Suggest(s *domain.GameState) (Move, bool)
}
