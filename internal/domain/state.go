package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists the suits in deck construction order.
var Suits = [4]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Valid reports whether s names a known suit.
func (s Suit) Valid() bool {
	switch s {
	case SuitHearts, SuitDiamonds, SuitClubs, SuitSpades:
		return true
	}
	return false
}

// Color is derived from the suit.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// Color returns red for hearts/diamonds and black for clubs/spades.
func (s Suit) Color() Color {
	if s == SuitHearts || s == SuitDiamonds {
		return ColorRed
	}
	return ColorBlack
}

// Rank runs from 1 (Ace) to 13 (King).
type Rank int

const (
	RankAce   Rank = 1
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Valid reports whether r is within 1..13.
func (r Rank) Valid() bool {
	return r >= RankAce && r <= RankKing
}

func (r Rank) String() string {
	switch r {
	case RankAce:
		return "A"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	}
	return fmt.Sprintf("%d", int(r))
}

// Card is a single playing card. Suit and Rank are its identity; FaceUp is its orientation.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// Same reports whether two cards share identity, ignoring orientation.
func (c Card) Same(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// Color returns the card's color.
func (c Card) Color() Color {
	return c.Suit.Color()
}

// String renders the card as rank plus suit initial, e.g. "QH". Face-down cards are bracketed.
func (c Card) String() string {
	s := c.Rank.String()
	if c.Suit != "" {
		s += strings.ToUpper(string(c.Suit)[:1])
	}
	if !c.FaceUp {
		return "[" + s + "]"
	}
	return s
}

// Pile is an ordered sequence of cards; the last element is the top.
type Pile struct {
	ID    PileID
	Cards []Card
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int {
	return len(p.Cards)
}

// Top returns the top card, if any.
func (p *Pile) Top() (Card, bool) {
	if len(p.Cards) == 0 {
		return Card{}, false
	}
	return p.Cards[len(p.Cards)-1], true
}

// IndexOf returns the position of the card with the same identity, or -1.
func (p *Pile) IndexOf(card Card) int {
	for i, c := range p.Cards {
		if c.Same(card) {
			return i
		}
	}
	return -1
}

// GameState is the authoritative set of piles for one deal.
type GameState struct {
	ID          string
	Seed        int64
	Stock       Pile
	Waste       Pile
	Foundations [FoundationCount]Pile
	Tableaus    [TableauCount]Pile
}

// NewGameState returns an empty state with every pile addressed by its id.
func NewGameState(id string, seed int64) *GameState {
	s := &GameState{
		ID:    id,
		Seed:  seed,
		Stock: Pile{ID: PileStock},
		Waste: Pile{ID: PileWaste},
	}
	for i := range s.Foundations {
		s.Foundations[i].ID = FoundationID(i)
	}
	for i := range s.Tableaus {
		s.Tableaus[i].ID = TableauID(i)
	}
	return s
}

// Piles returns every pile in canonical order: stock, waste, foundations, tableaus.
func (s *GameState) Piles() []*Pile {
	out := make([]*Pile, 0, 2+FoundationCount+TableauCount)
	out = append(out, &s.Stock, &s.Waste)
	for i := range s.Foundations {
		out = append(out, &s.Foundations[i])
	}
	for i := range s.Tableaus {
		out = append(out, &s.Tableaus[i])
	}
	return out
}
