package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration, parsed from the environment
// (optionally seeded from a .env file in development).
type Config struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	WordsFile string `env:"WORDS_FILE"` // empty = embedded default list

	MaxGuesses      int `env:"MAX_GUESSES" envDefault:"6"`
	RealtimeSeconds int `env:"REALTIME_SECONDS" envDefault:"300"`
	TurnSeconds     int `env:"TURN_SECONDS" envDefault:"0"` // 0 = no per-turn timeout

	SessionRetentionSeconds int `env:"SESSION_RETENTION_SECONDS" envDefault:"600"`
	DisconnectGraceSeconds  int `env:"DISCONNECT_GRACE_SECONDS" envDefault:"120"`
	EvictIntervalSeconds    int `env:"EVICT_INTERVAL_SECONDS" envDefault:"30"`
}

func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxGuesses <= 0 {
		return Config{}, fmt.Errorf("MAX_GUESSES must be positive, got %d", cfg.MaxGuesses)
	}
	if cfg.RealtimeSeconds <= 0 {
		return Config{}, fmt.Errorf("REALTIME_SECONDS must be positive, got %d", cfg.RealtimeSeconds)
	}
	return cfg, nil
}
