package bot

import (
	"fmt"
)

// BotLevel selects how much judgement goes into a hint.
type BotLevel string

const (
	// BotLevelGood ranks moves by category only.
	BotLevelGood BotLevel = "good"
	// BotLevelSmart adds tie-breaking rules within each category.
	BotLevelSmart BotLevel = "smart"
)

// NewBrain creates a hint brain for the specified level. An empty level means smart.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &PipelineBot{
			Rules:   []SelectionRule{&CategoryRule{}},
			Weights: DefaultTuning,
		}, nil
	case BotLevelSmart, "":
		return &PipelineBot{
			Rules: []SelectionRule{
				&CategoryRule{},
				&SafeFoundationRule{},
				&DeepRevealRule{},
				&WasteFirstRule{},
			},
			Weights: DefaultTuning,
		}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %s", level)
	}
}
