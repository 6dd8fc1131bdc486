package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Yougile holds credentials for the YouGile REST API. Key and project id are
// validated by the client constructor rather than here, so a misconfigured
// deployment fails with a single configuration error at startup.
type Yougile struct {
	BaseURL         string `env:"YOUGILE_BASE_URL"`
	APIKey          string `env:"YOUGILE_API_KEY"`
	ProjectID       string `env:"YOUGILE_PROJECT_ID"`
	DefaultColumnID string `env:"YOUGILE_COLUMN_ID"`
}

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:"yougile_bot.db"`
	Yougile       Yougile
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}
