package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"meatball-bot/model"
)

// Load reads the configuration from environment variables, with a .env
// file as fallback for local development.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATABASE_PATH", "meatball.db")
	v.SetDefault("RECONCILE_INTERVAL", "10s")
	v.SetDefault("GRANT_RETENTION", "24h")

	token := v.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	cfg := &model.Config{
		BotToken:          token,
		TestingGuildID:    v.GetString("TESTING_GUILD"),
		DatabasePath:      v.GetString("DATABASE_PATH"),
		ReconcileInterval: v.GetDuration("RECONCILE_INTERVAL"),
		GrantRetention:    v.GetDuration("GRANT_RETENTION"),
	}

	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %q", v.GetString("RECONCILE_INTERVAL"))
	}
	if cfg.GrantRetention <= 0 {
		return nil, fmt.Errorf("invalid GRANT_RETENTION: %q", v.GetString("GRANT_RETENTION"))
	}

	return cfg, nil
}
