package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wordbox/internal/ai"
	"github.com/example/wordbox/internal/bot"
	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/internal/scheduler"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	})
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var chatGPT *ai.ChatGPT
	if cfg.OpenAIAPIKey != "" {
		chatGPT, err = ai.New(cfg.OpenAIAPIKey)
		if err != nil && !errors.Is(err, ai.ErrMissingAPIKey) {
			log.Printf("Warning: Unable to initialize OpenAI client: %v", err)
		}
	}

	botCfg := bot.DefaultConfig()
	botCfg.QuizWordCount = cfg.QuizWordCount
	botCfg.AdminUserIDs = cfg.AdminUserIDs

	b, err := bot.New(cfg.TelegramToken, db, botCfg, chatGPT)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.EnableScheduler {
		log.Println("Starting reminder scheduler...")
		sched := scheduler.New(b, database.NewUserRepository(db), b.Engine(), scheduler.Config{
			StartHour: cfg.NotificationStartHour,
			EndHour:   cfg.NotificationEndHour,
		})
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	log.Println("Bot is running. Press Ctrl+C to stop.")
	return b.Start(ctx)
}
