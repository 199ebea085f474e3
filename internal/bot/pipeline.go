package bot

import (
	"solitaire/internal/domain"
)

// SelectionContext holds the candidates being scored by the rule pipeline.
type SelectionContext struct {
	State      *domain.GameState
	Candidates []Move
	Scores     []float64
	Weights    Weights
}

// SelectionRule is a logic unit that adjusts candidate scores.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// CategoryRule scores each candidate by its category weight.
type CategoryRule struct{}

func (r *CategoryRule) Name() string { return "Category" }

func (r *CategoryRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		switch m.Category {
		case CategoryFoundation:
			ctx.Scores[i] += ctx.Weights.Foundation
		case CategoryReveal:
			ctx.Scores[i] += ctx.Weights.Reveal
		case CategoryBuild:
			ctx.Scores[i] += ctx.Weights.Build
		case CategoryDraw:
			ctx.Scores[i] += ctx.Weights.Draw
		}
	}
}

// DeepRevealRule prefers digging into the column with the most face-down cards.
type DeepRevealRule struct{}

func (r *DeepRevealRule) Name() string { return "DeepReveal" }

func (r *DeepRevealRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Category != CategoryReveal {
			continue
		}
		p, err := ctx.State.GetPile(m.Source)
		if err != nil {
			continue
		}
		hidden := 0
		for _, c := range p.Cards {
			if !c.FaceUp {
				hidden++
			}
		}
		ctx.Scores[i] += float64(hidden) * ctx.Weights.HiddenCardBonus
	}
}

// SafeFoundationRule prefers foundation moves that cannot strand a tableau build.
type SafeFoundationRule struct{}

func (r *SafeFoundationRule) Name() string { return "SafeFoundation" }

func (r *SafeFoundationRule) Apply(ctx *SelectionContext) {
	auto, ok := domain.FindAutoMove(ctx.State)
	for i, m := range ctx.Candidates {
		if m.Category != CategoryFoundation {
			continue
		}
		if m.Card.Rank <= 2 || (ok && auto.Card.Same(m.Card)) {
			ctx.Scores[i] += ctx.Weights.SafeFoundationBonus
		}
	}
}

// WasteFirstRule prefers playing from the waste over rearranging the tableau.
type WasteFirstRule struct{}

func (r *WasteFirstRule) Name() string { return "WasteFirst" }

func (r *WasteFirstRule) Apply(ctx *SelectionContext) {
	for i, m := range ctx.Candidates {
		if m.Category == CategoryBuild && m.Source == domain.PileWaste {
			ctx.Scores[i] += ctx.Weights.WasteBuildBonus
		}
	}
}
