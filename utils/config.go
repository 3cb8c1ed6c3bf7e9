package utils

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read from the environment, with a .env file loaded first when present
type Config struct {
	BotToken       string
	GuildID        string
	Port           string
	DatabaseURL    string
	CatalogPath    string
	LogLevel       string
	LogPretty      bool
	RenderInterval time.Duration
}

// LoadConfig loads .env (if any) and reads the process environment
func LoadConfig() Config {
	envErr := godotenv.Load()

	cfg := Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		GuildID:        os.Getenv("GUILD_ID"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogPath:    getEnv("HORSE_CATALOG", "horses.json"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      parseBool(os.Getenv("LOG_PRETTY")),
		RenderInterval: DefaultRenderInterval,
	}
	if v := os.Getenv("RENDER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RenderInterval = d
		}
	}

	SetupLogging(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		BotLogf("CONFIG", "No .env file found, using system environment variables")
	}
	return cfg
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
