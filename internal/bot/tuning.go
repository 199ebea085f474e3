package bot

// Weights scores candidate moves. Category weights are spaced far enough apart that the
// per-move adjustments never reorder categories.
type Weights struct {
	Foundation float64
	Reveal     float64
	Build      float64
	Draw       float64

	// HiddenCardBonus is added per face-down card left under a revealing move's source.
	HiddenCardBonus float64
	// SafeFoundationBonus favours foundation moves the cascade rule would also make.
	SafeFoundationBonus float64
	// WasteBuildBonus favours builds that dig into the waste over tableau shuffles.
	WasteBuildBonus float64
}

// DefaultTuning orders categories foundation > reveal > build > draw.
var DefaultTuning = Weights{
	Foundation:          1000,
	Reveal:              100,
	Build:               10,
	Draw:                1,
	HiddenCardBonus:     1,
	SafeFoundationBonus: 5,
	WasteBuildBonus:     2,
}
