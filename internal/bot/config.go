package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of words asked in one quiz
	QuizWordCount int
	// Maximum number of words shown by /list
	ListLimit int
	// Telegram users allowed to run admin commands
	AdminUserIDs map[int64]bool
	// Maximum accepted size of an uploaded word list
	MaxUploadBytes int64
	// Timeout for downloading uploaded files
	DownloadTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		QuizWordCount:   10,
		ListLimit:       50,
		AdminUserIDs:    make(map[int64]bool),
		MaxUploadBytes:  10 << 20,
		DownloadTimeout: time.Minute,
	}
}
