package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Defaults used when no game config is loaded or a field is left unset.
const (
	DefaultStartingDice  = 5
	DefaultLogCapacity   = 20
	DefaultCallMargin    = 1
	DefaultSpotOnChance  = 0.1
	DefaultBotMinDelay   = 1
	DefaultBotMaxDelay   = 3
	DefaultMaxPlayers    = 4
	DefaultBotLevel      = "standard"
	DefaultSpotOnWindow  = 0
	DefaultIdentitiesRef = "data/bot_identities.json"
)

// GameConfig holds table and AI tuning loaded from JSON.
type GameConfig struct {
	StartingDice int `json:"starting_dice"`
	LogCapacity  int `json:"log_capacity"`
	MaxPlayers   int `json:"max_players"`

	BotLevel     string  `json:"bot_level"` // "standard" or "smart"
	CallMargin   int     `json:"call_margin"`
	SpotOnChance float64 `json:"spot_on_chance"`
	SpotOnWindow int     `json:"spot_on_window"`

	// BotMinDelaySeconds and BotMaxDelaySeconds bound how long a hosted bot "thinks".
	BotMinDelaySeconds int    `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int    `json:"bot_max_delay_seconds"`
	BotIdentitiesPath  string `json:"bot_identities_path"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig parses a config file without touching the global.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration with defaults applied.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return GameConfig{}.WithDefaults()
	}
	return cfg.WithDefaults()
}

// WithDefaults fills every unset field with its default.
func (c GameConfig) WithDefaults() GameConfig {
	if c.StartingDice <= 0 {
		c.StartingDice = DefaultStartingDice
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = DefaultLogCapacity
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	if c.BotLevel == "" {
		c.BotLevel = DefaultBotLevel
	}
	if c.CallMargin <= 0 {
		c.CallMargin = DefaultCallMargin
	}
	if c.SpotOnChance <= 0 || c.SpotOnChance > 1 {
		c.SpotOnChance = DefaultSpotOnChance
	}
	if c.SpotOnWindow < 0 {
		c.SpotOnWindow = DefaultSpotOnWindow
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = DefaultBotMinDelay
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = max(DefaultBotMaxDelay, c.BotMinDelaySeconds)
	}
	if c.BotIdentitiesPath == "" {
		c.BotIdentitiesPath = DefaultIdentitiesRef
	}
	return c
}
