package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"dudo/internal/bot"
	"dudo/internal/config"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfgPath := defaultGameConfig
	if val, ok := env[EnvGameConfig]; ok && val != "" {
		cfgPath = val
	}
	if err := config.LoadGameConfig(cfgPath); err != nil {
		logger.Warn("InitModule: Using default game config: %v", err)
	}

	if err := bot.LoadIdentities(identitiesPath(env, config.GetGameConfig())); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameDudo, NewMatch); err != nil {
		return err
	}

	logger.Info("Dudo Go module loaded.")
	return nil
}
