package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is a named AI opponent from the identity pool.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "standard" or "smart"
	AvatarIndex int    `json:"avatar_index"`
}

// Level maps the identity's difficulty to a strategy, defaulting to standard.
func (b BotIdentity) Level() BotLevel {
	level, err := ParseLevel(b.Difficulty)
	if err != nil {
		return BotLevelStandard
	}
	return level
}

// Name is the display name, falling back to username then user ID.
func (b BotIdentity) Name() string {
	switch {
	case b.DisplayName != "":
		return b.DisplayName
	case b.Username != "":
		return b.Username
	default:
		return b.UserID
	}
}

var (
	botIdentities []BotIdentity
	botConfigMap  map[string]BotIdentity
	identityMu    sync.RWMutex
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		setIdentities(identities)
	})
	return loadErr
}

func setIdentities(identities []BotIdentity) {
	identityMu.Lock()
	defer identityMu.Unlock()
	botIdentities = identities
	botConfigMap = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botConfigMap[identity.UserID] = identity
		}
	}
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identityMu.RLock()
		identities := append([]BotIdentity(nil), botIdentities...)
		identityMu.RUnlock()

		for i := range identities {
			identity := &identities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Level().String(),
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: failed to update bot account %s: %v", userID, err)
			}

			logger.Info("ProvisionBots: bot %s (%s) is ready, level %s", identity.Name(), userID, identity.Level())
		}
		setIdentities(identities)
	})
}

// GetBotConfig returns the full identity configuration for a given bot ID.
func GetBotConfig(userID string) (BotIdentity, bool) {
	identityMu.RLock()
	defer identityMu.RUnlock()
	config, ok := botConfigMap[userID]
	return config, ok
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
// Without a pool it invents a placeholder so local play always works.
func GetBotIdentity(index int) BotIdentity {
	identityMu.RLock()
	defer identityMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	identity := botIdentities[index%len(botIdentities)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("bot-%d", index)
	}
	return identity
}

// Roster returns n identities for a table, never repeating a user ID.
func Roster(n int) []BotIdentity {
	out := make([]BotIdentity, 0, n)
	seen := make(map[string]bool, n)
	for i := 0; len(out) < n; i++ {
		id := GetBotIdentity(i)
		if seen[id.UserID] {
			id.UserID = fmt.Sprintf("%s-%d", id.UserID, i)
		}
		seen[id.UserID] = true
		out = append(out, id)
	}
	return out
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	_, ok := GetBotConfig(userID)
	return ok
}
