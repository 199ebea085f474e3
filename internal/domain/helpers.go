package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PileID addresses a pile. The string forms are shared with presentation layers.
type PileID string

const (
	PileStock PileID = "stock"
	PileWaste PileID = "waste"

	foundationPrefix = "foundation-"
	tableauPrefix    = "tableau-"
)

// PileKind classifies a pile by its placement rules.
type PileKind int

const (
	KindUnknown PileKind = iota
	KindStock
	KindWaste
	KindFoundation
	KindTableau
)

// ErrUnknownPile is returned for identifiers that do not address a pile.
var ErrUnknownPile = errors.New("unknown pile")

// FoundationID returns the id of foundation i (0..3).
func FoundationID(i int) PileID {
	return PileID(foundationPrefix + strconv.Itoa(i))
}

// TableauID returns the id of tableau i (0..6).
func TableauID(i int) PileID {
	return PileID(tableauPrefix + strconv.Itoa(i))
}

// ParsePileID validates a raw identifier coming from outside the engine.
func ParsePileID(raw string) (PileID, error) {
	id := PileID(strings.TrimSpace(raw))
	if id.Kind() == KindUnknown {
		return "", fmt.Errorf("%w: %q", ErrUnknownPile, raw)
	}
	switch id.Kind() {
	case KindFoundation:
		id = FoundationID(id.Index())
	case KindTableau:
		id = TableauID(id.Index())
	}
	return id, nil
}

// Kind derives the pile kind from the identifier.
func (id PileID) Kind() PileKind {
	switch id {
	case PileStock:
		return KindStock
	case PileWaste:
		return KindWaste
	}
	if i, ok := indexAfter(string(id), foundationPrefix); ok && i < FoundationCount {
		return KindFoundation
	}
	if i, ok := indexAfter(string(id), tableauPrefix); ok && i < TableauCount {
		return KindTableau
	}
	return KindUnknown
}

// Index returns the numeric suffix for foundation and tableau ids, or -1.
func (id PileID) Index() int {
	switch id.Kind() {
	case KindFoundation:
		i, _ := indexAfter(string(id), foundationPrefix)
		return i
	case KindTableau:
		i, _ := indexAfter(string(id), tableauPrefix)
		return i
	}
	return -1
}

func indexAfter(s, prefix string) (int, bool) {
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	i, err := strconv.Atoi(s[len(prefix):])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// ParseSuit accepts full names ("hearts") or initials ("H").
func ParseSuit(raw string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hearts", "h":
		return SuitHearts, nil
	case "diamonds", "d":
		return SuitDiamonds, nil
	case "clubs", "c":
		return SuitClubs, nil
	case "spades", "s":
		return SuitSpades, nil
	}
	return "", fmt.Errorf("unknown suit %q", raw)
}

// removeRun cuts cards[from:] out of the pile and returns them in their original order.
func (p *Pile) removeRun(from int) []Card {
	run := append([]Card(nil), p.Cards[from:]...)
	p.Cards = p.Cards[:from]
	return run
}
