package bot

import (
	"solitaire/internal/domain"
)

// Candidates lists every productive move in the position, in scan order: waste top, then
// tableau runs left to right, then the stock. Moves that only shuffle a run between two
// face-up bases, or slide a King from one empty column to another, are left out.
func Candidates(s *domain.GameState) []Move {
	var out []Move

	if top, ok := s.Waste.Top(); ok {
		out = append(out, cardMoves(s, domain.PileWaste, top, 0, false)...)
	}
	for i := range s.Tableaus {
		pile := &s.Tableaus[i]
		for k, c := range pile.Cards {
			if !c.FaceUp {
				continue
			}
			exposesHidden := k > 0 && !pile.Cards[k-1].FaceUp
			out = append(out, cardMoves(s, pile.ID, c, k, exposesHidden)...)
		}
	}
	if s.Stock.Len() > 0 || s.Waste.Len() > 0 {
		out = append(out, Move{Kind: MoveDraw, Source: domain.PileStock, Target: domain.PileWaste, Category: CategoryDraw})
	}
	return out
}

func cardMoves(s *domain.GameState, source domain.PileID, card domain.Card, index int, exposesHidden bool) []Move {
	var out []Move
	for _, target := range domain.ValidTargets(s, card) {
		m := Move{Kind: MoveCard, Card: card, Source: source, Target: target}
		switch {
		case target.Kind() == domain.KindFoundation:
			m.Category = CategoryFoundation
		case exposesHidden:
			m.Category = CategoryReveal
		case source == domain.PileWaste:
			m.Category = CategoryBuild
		case source.Kind() == domain.KindTableau && index == 0:
			// emptying a column only helps if something else can use it
			if card.Rank == domain.RankKing {
				continue
			}
			m.Category = CategoryBuild
		default:
			continue
		}
		out = append(out, m)
	}
	return out
}
