// Package dudo parses CLI flags and runs a text Dudo match against bots.
package dudo

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"dudo/internal/app"
	"dudo/internal/bot"
	"dudo/internal/config"
	"dudo/internal/logging"
	"dudo/internal/telemetry"
)

const serviceName = "dudo"

// Config holds CLI configuration: DUDO_* environment first, flags on top.
type Config struct {
	config.Env

	Players int
	Dice    int
	Bot     string
	Auto    bool

	// LogOutput receives structured logs; nil means stderr.
	LogOutput io.Writer
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Env: env, Players: 2}

	fs.IntVar(&cfg.Players, "players", cfg.Players, "Number of seats at the table, 2-6")
	fs.IntVar(&cfg.Dice, "dice", cfg.Dice, "Starting dice per player (0 uses the game config)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for dice and bots (0 draws one)")
	fs.StringVar(&cfg.Bot, "bot", cfg.Bot, "Bot level: standard or smart (empty uses the game config)")
	fs.BoolVar(&cfg.Auto, "auto", cfg.Auto, "Seat only bots and play the match to the end")
	fs.StringVar(&cfg.GameConfigPath, "config", cfg.GameConfigPath, "Path to the game config JSON")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Players < 2 || cfg.Players > 6 {
		return Config{}, fmt.Errorf("players must be 2-6, got %d", cfg.Players)
	}
	if cfg.Bot != "" {
		if _, err := bot.ParseLevel(cfg.Bot); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Run plays one match, reading the human's commands from in and writing the
// table to out. Bot turns are played as soon as they come up.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logOutput := cfg.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}
	logger, err := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: logOutput})
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown: %v", err)
		}
	}()

	gameCfg := loadGameConfig(cfg, logger)
	if err := bot.LoadIdentities(gameCfg.BotIdentitiesPath); err != nil {
		logger.Debug("using placeholder bot names: %v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("seed %d", seed)
	rng := rand.New(rand.NewSource(seed))

	opts := []app.Option{app.WithLogger(logger), app.WithConfig(gameCfg)}
	if cfg.ReceiptSecret != "" {
		signer, err := app.NewReceiptSigner(cfg.ReceiptSecret, cfg.ReceiptIssuer)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithReceipts(signer))
	}
	svc := app.NewService(rng, opts...)

	session, err := newSession(ctx, svc, gameCfg, cfg, rng, out)
	if err != nil {
		return err
	}
	return session.play(ctx, in)
}

// loadGameConfig reads the configured JSON file, falling back to defaults
// when it does not exist.
func loadGameConfig(cfg Config, logger runtime.Logger) config.GameConfig {
	gameCfg := config.GameConfig{}
	if cfg.GameConfigPath != "" {
		c, err := config.ReadGameConfig(cfg.GameConfigPath)
		switch {
		case err == nil:
			gameCfg = *c
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no game config at %s, using defaults", cfg.GameConfigPath)
		default:
			logger.Warn("%v; using defaults", err)
		}
	}
	if cfg.Bot != "" {
		gameCfg.BotLevel = cfg.Bot
	}
	return gameCfg.WithDefaults()
}
