package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wickedwords/word-chain-bot/logging"
)

// Config holds all runtime settings for the bot. Every field is read from the
// environment; a .env file in the working directory is loaded first if present.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	PostgresURL  string `env:"POSTGRES_URL,required"`
	AdminGuildID int64  `env:"ADMIN_GUILD_ID"`

	// SinglePlayer relaxes the turn-order rule so one member can chain alone.
	SinglePlayer bool `env:"SINGLE_PLAYER" envDefault:"false"`

	MetricsAddr  string           `env:"METRICS_ADDR" envDefault:":6060"`
	LogLevel     logging.LogLevel `env:"LOG_LEVEL" envDefault:"info"`
	LanguagesDir string           `env:"LANGUAGES_DIR" envDefault:"languages"`
}

// Load reads the configuration from the environment. The .env file is
// optional; a missing file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return cfg, nil
}
