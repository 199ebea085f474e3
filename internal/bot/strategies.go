package bot

import (
	"solitaire/internal/domain"
)

// PipelineBot scores every candidate through its rules and suggests the best one. Ties keep
// scan order.
type PipelineBot struct {
	Rules   []SelectionRule
	Weights Weights
}

func (b *PipelineBot) Suggest(s *domain.GameState) (Move, bool) {
	if s == nil {
		return Move{}, false
	}
	candidates := Candidates(s)
	if len(candidates) == 0 {
		return Move{}, false
	}
	ctx := &SelectionContext{
		State:      s,
		Candidates: candidates,
		Scores:     make([]float64, len(candidates)),
		Weights:    b.Weights,
	}
	for _, rule := range b.Rules {
		rule.Apply(ctx)
	}
	best := 0
	for i := range ctx.Scores {
		if ctx.Scores[i] > ctx.Scores[best] {
			best = i
		}
	}
	return candidates[best], true
}
