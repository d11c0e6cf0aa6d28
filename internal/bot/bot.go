package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/example/wordbox/internal/ai"
	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/internal/excel"
	"github.com/example/wordbox/internal/quiz"
	"github.com/example/wordbox/internal/report"
	"github.com/example/wordbox/internal/spaced_repetition"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Conversation states
const (
	stateWaitingForWords = "waiting_for_word_list"
	stateWaitingForFile  = "waiting_for_file"
)

// Bot represents the Telegram bot application
type Bot struct {
	api    sender
	token  string
	config *BotConfig

	words       *database.WordRepository
	stats       *database.GameStateRepository
	users       *database.UserRepository
	quizResults *database.QuizResultRepository

	engine   *spaced_repetition.Engine
	importer *excel.Importer
	reports  *report.Service
	chatGPT  *ai.ChatGPT

	httpClient *http.Client

	mu         sync.Mutex
	userStates map[int64]string
	quizzes    map[int64]*quiz.Session
}

// New creates a new bot instance. chatGPT may be nil, in which case example
// sentences come from a template.
func New(token string, db *sqlx.DB, config *BotConfig, chatGPT *ai.ChatGPT) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is not established")
	}
	if config == nil {
		config = DefaultConfig()
	}

	words := database.NewWordRepository(db)
	stats := database.NewGameStateRepository(db)
	quizResults := database.NewQuizResultRepository(db)

	return &Bot{
		token:       token,
		config:      config,
		words:       words,
		stats:       stats,
		users:       database.NewUserRepository(db),
		quizResults: quizResults,
		engine:      spaced_repetition.NewEngine(words, nil, nil),
		importer:    excel.NewImporter(words),
		reports:     report.NewService(words, stats, quizResults),
		chatGPT:     chatGPT,
		httpClient:  &http.Client{Timeout: config.DownloadTimeout},
		userStates:  make(map[int64]string),
		quizzes:     make(map[int64]*quiz.Session),
	}, nil
}

// Engine returns the review engine used by the bot
func (b *Bot) Engine() *spaced_repetition.Engine {
	return b.engine
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			log.Println("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(userID int64, count int) error {
	// user ID and chat ID are the same for private chats
	chatID := userID

	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ You have %d %s to review! Tap Review to start.", count, wordForm))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🔁 Review", CallbackData: callbackReview}},
	})
	_, err := b.api.Send(msg)

	if err != nil {
		log.Printf("Error sending reminder to user %d: %v", userID, err)
	} else {
		log.Printf("Successfully sent reminder to user %d for %d words", userID, count)
	}
	return err
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminUserIDs[userID]
}

func (b *Bot) state(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userStates[chatID]
}

func (b *Bot) setState(chatID int64, state string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == "" {
		delete(b.userStates, chatID)
		return
	}
	b.userStates[chatID] = state
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		var err error
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.HandleMessage(ctx, update.Message)
		}
		if err != nil {
			log.Printf("Error handling message from chat %d: %v", update.Message.Chat.ID, err)
		}
	case update.CallbackQuery != nil:
		if err := b.HandleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("Error handling callback %q: %v", update.CallbackQuery.Data, err)
		}
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

// MainMenuButtons returns the buttons for the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🔁 Review", CallbackData: callbackReview},
			{Text: "🔤 Quiz", CallbackData: callbackQuiz},
		},
		{
			{Text: "📊 Statistics", CallbackData: callbackStats},
			{Text: "📝 Add Words", CallbackData: callbackAddWords},
		},
	}
}
