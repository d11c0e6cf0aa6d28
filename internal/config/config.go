package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned by RequireToken when the bot token is not set
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

// Default values
const (
	DefaultDBType                = "sqlite"
	DefaultDBPath                = "data/wordbox.db"
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultQuizWordCount         = 10
)

// Config represents the application configuration
type Config struct {
	TelegramToken string
	DBType        string
	DBPath        string
	DatabaseURL   string
	AdminUserIDs  map[int64]bool

	EnableScheduler       bool
	NotificationStartHour int
	NotificationEndHour   int

	QuizWordCount int
	OpenAIAPIKey  string
}

// Load reads .env files (if present) and then the environment. Without
// arguments ".env" in the working directory is tried.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		TelegramToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		DBType:                strings.ToLower(envString("DB_TYPE", DefaultDBType)),
		DBPath:                envString("DB_PATH", DefaultDBPath),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		AdminUserIDs:          parseIDs(os.Getenv("ADMIN_USER_IDS")),
		EnableScheduler:       os.Getenv("ENABLE_SCHEDULER") != "false",
		NotificationStartHour: envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour),
		NotificationEndHour:   envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour),
		QuizWordCount:         envPositive("QUIZ_WORD_COUNT", DefaultQuizWordCount),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
	}
	return cfg, nil
}

// RequireToken checks that the bot token is configured
func (c *Config) RequireToken() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	return nil
}

// DSN returns the data source name for the configured database type
func (c *Config) DSN() string {
	if c.DBType == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envHour(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < 0 || h > 23 {
		log.Printf("Warning: invalid %s %q, using %d", key, s, def)
		return def
	}
	return h
}

func envPositive(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s %q, using %d", key, s, def)
		return def
	}
	return n
}

func parseIDs(s string) map[int64]bool {
	ids := make(map[int64]bool)
	if s == "" {
		return ids
	}
	for _, idStr := range strings.Split(s, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Printf("Warning: Invalid admin user ID: %s", idStr)
			continue
		}
		ids[id] = true
	}
	return ids
}
