package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings read from DUDO_* environment variables.
type Env struct {
	GameConfigPath string `env:"DUDO_GAME_CONFIG" envDefault:"data/game_config.json"`
	LogLevel       string `env:"DUDO_LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"DUDO_LOG_FORMAT" envDefault:"text"`
	// Seed fixes the dice and AI random source; 0 draws a fresh seed.
	Seed int64 `env:"DUDO_SEED" envDefault:"0"`
	// ReceiptSecret enables signed round receipts when set.
	ReceiptSecret string `env:"DUDO_RECEIPT_SECRET"`
	ReceiptIssuer string `env:"DUDO_RECEIPT_ISSUER" envDefault:"dudo"`
	OTelEndpoint  string `env:"DUDO_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses an Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
