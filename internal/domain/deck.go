package domain

import "math"

// NewDeck returns the 52 cards in suit-major order (hearts A..K, diamonds, clubs, spades), all face-up.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, Card{Suit: s, Rank: r, FaceUp: true})
		}
	}
	return deck
}

// SeededRandom is the deterministic generator frac(sin(n) * 10000) over a counter
// that starts at the seed and advances once per draw.
type SeededRandom struct {
	n float64
}

// NewSeededRandom starts the counter at seed.
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{n: float64(seed)}
}

// Float64 returns the next value in [0, 1).
func (r *SeededRandom) Float64() float64 {
	x := math.Sin(r.n) * 10000
	r.n++
	return x - math.Floor(x)
}

// Shuffle returns a Fisher-Yates permutation of deck driven by seed. The input is not modified.
// The same seed always yields the same order for the same input.
func Shuffle(deck []Card, seed int64) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng := NewSeededRandom(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(rng.Float64() * float64(i+1)))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
