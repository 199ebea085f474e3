package app

import "solitaire/internal/domain"

type PileSnapshot struct {
	ID    domain.PileID
	Cards []domain.Card
}

// Snapshot is a detached copy of the board for late joiners and spectators.
type Snapshot struct {
	GameID   string
	Seed     int64
	Phase    Phase
	Piles    []PileSnapshot
	InFlight []domain.Card
	Won      bool
}

// Snapshot copies every pile in canonical order: stock, waste, foundations, tableaus.
func (s *Service) Snapshot() Snapshot {
	if s.state == nil {
		return Snapshot{Phase: s.phase}
	}
	return SnapshotOf(s.state.Clone(), s.phase, s.queue.Cards())
}

// SnapshotOf builds a snapshot from a state the caller already owns.
func SnapshotOf(state *domain.GameState, phase Phase, inFlight []domain.Card) Snapshot {
	snap := Snapshot{
		GameID:   state.ID,
		Seed:     state.Seed,
		Phase:    phase,
		InFlight: inFlight,
		Won:      domain.IsWon(state),
	}
	for _, p := range state.Piles() {
		snap.Piles = append(snap.Piles, PileSnapshot{ID: p.ID, Cards: p.Cards})
	}
	return snap
}
