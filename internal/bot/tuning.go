package bot

import "dudo/internal/config"

// Tuning holds the challenge thresholds shared by every strategy.
type Tuning struct {
	// CallMargin is how far a bid may exceed the estimate before the bot calls.
	CallMargin int
	// SpotOnWindow is the largest |estimate - quantity| at which spot-on is considered.
	SpotOnWindow int
	// SpotOnChance is the probability of declaring spot-on inside the window.
	SpotOnChance float64
}

// DefaultTuning is a cautious caller that rarely gambles on spot-on.
var DefaultTuning = Tuning{
	CallMargin:   config.DefaultCallMargin,
	SpotOnWindow: config.DefaultSpotOnWindow,
	SpotOnChance: config.DefaultSpotOnChance,
}

// TuningFromConfig reads bot tuning from the game config.
func TuningFromConfig(c config.GameConfig) Tuning {
	c = c.WithDefaults()
	return Tuning{
		CallMargin:   c.CallMargin,
		SpotOnWindow: c.SpotOnWindow,
		SpotOnChance: c.SpotOnChance,
	}
}

// smartBluffRate is the observed bluff rate above which SmartBot calls one
// die earlier against that bidder.
const smartBluffRate = 0.5
