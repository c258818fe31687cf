package bot

import (
	"fmt"
	"os"
	"strings"
)

const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

type Config struct {
	TelegramToken string
	TMDBAPIKey    string
	BotUsername   string
	BaseURL       string
	TelegramMode  string
	Port          string
	StateFile     string
	TMDBBaseURL   string
	TMDBLanguage  string
	TMDBRegion    string
	RedisURL      string
	LogLevel      string
}

func LoadConfig() *Config {
	c := &Config{}
	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	c.TMDBAPIKey = strings.TrimSpace(os.Getenv("TMDB_API_KEY"))
	c.BotUsername = strings.TrimPrefix(strings.TrimSpace(os.Getenv("TELEGRAM_BOT_USERNAME")), "@")
	c.BaseURL = strings.TrimRight(getenvOr("BASE_URL", os.Getenv("RENDER_EXTERNAL_URL")), "/")
	c.TelegramMode = getenvOr("TELEGRAM_MODE", ModeWebhook)
	c.Port = getenvOr("PORT", "8080")
	c.StateFile = getenvOr("STATE_FILE", "persistence.json")
	c.TMDBBaseURL = getenvOr("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	c.TMDBLanguage = getenvOr("TMDB_LANGUAGE", "en-US")
	c.TMDBRegion = getenvOr("TMDB_REGION", "US")
	c.RedisURL = os.Getenv("REDIS_URL")
	c.LogLevel = getenvOr("LOG_LEVEL", "info")
	return c
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var missing []string
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.TMDBAPIKey == "" {
		missing = append(missing, "TMDB_API_KEY")
	}
	if c.BotUsername == "" {
		missing = append(missing, "TELEGRAM_BOT_USERNAME")
	}
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.TelegramMode != ModeWebhook && c.TelegramMode != ModePolling {
		return fmt.Errorf("unsupported TELEGRAM_MODE %q", c.TelegramMode)
	}
	return nil
}

// WebhookURL is where the platform posts updates: the base URL plus the token as secret path.
func (c *Config) WebhookURL() string {
	return c.BaseURL + "/" + c.TelegramToken
}

func getenvOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
