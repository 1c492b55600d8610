package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dudo/internal/bot/brain"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelStandard BotLevel = iota + 1
	BotLevelSmart
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelStandard:
		return "standard"
	case BotLevelSmart:
		return "smart"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a config or flag value to a BotLevel. Empty means standard.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "easy", "medium":
		return BotLevelStandard, nil
	case "smart", "hard":
		return BotLevelSmart, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
// rng may be nil to use a time-seeded default.
func NewBrain(level BotLevel, tuning Tuning, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelStandard:
		return &StandardBot{Tuning: tuning, Rng: rng}, nil
	case BotLevelSmart:
		return &SmartBot{Tuning: tuning, Rng: rng, Memory: brain.NewMemory()}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
