package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	callbackMainMenu    = "main_menu"
	callbackReview      = "review"
	callbackQuiz        = "quiz"
	callbackStats       = "stats"
	callbackAddWords    = "add_words"
	callbackQuizSkip    = "quiz_skip"
	callbackQuizRestart = "quiz_restart"

	prefixLearn   = "learn_"
	prefixForget  = "forget_"
	prefixMeaning = "meaning_"
	prefixExample = "example_"
)

const defaultNotificationHour = 9

const addWordsHelp = "Send me your words, one per line, in the format:\n" +
	"english - persian\n\n" +
	"Example:\n" +
	"apple - سیب\n" +
	"book - کتاب"

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	// a new command cancels whatever the chat was waiting for
	b.setState(message.Chat.ID, "")

	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "menu":
		return b.showMainMenu(message.Chat.ID)
	case "help":
		return b.handleHelp(message)
	case "add":
		return b.handleAdd(ctx, message)
	case "review":
		return b.showNextReview(ctx, message.Chat.ID)
	case "quiz":
		return b.startQuiz(ctx, message.Chat.ID, message.From.ID)
	case "stats":
		return b.handleStats(ctx, message.Chat.ID)
	case "list":
		return b.handleList(ctx, message)
	case "delete":
		return b.handleDelete(ctx, message)
	case "edit":
		return b.handleEdit(ctx, message)
	case "import":
		return b.handleImportCommand(message)
	case "notify":
		return b.handleNotifyCommand(ctx, message)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /menu to show the main menu.")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		return b.sendMessage(msg)
	}
}

// HandleMessage handles plain text and document messages
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch b.state(chatID) {
	case stateWaitingForFile:
		if message.Document == nil {
			return b.sendText(chatID, "Please send an .xlsx or .csv file.")
		}
		b.setState(chatID, "")
		return b.handleDocument(ctx, message)
	case stateWaitingForWords:
		b.setState(chatID, "")
		return b.addWords(ctx, chatID, message.Text)
	}

	if session := b.activeQuiz(chatID); session != nil && !session.Finished() {
		return b.handleGuess(ctx, chatID, message.Text)
	}

	msg := tgbotapi.NewMessage(chatID, "I don't understand. Use /menu to show the main menu.")
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil {
		return fmt.Errorf("invalid message: sender is missing")
	}
	if _, err := b.ensureUser(ctx, message.From); err != nil {
		return err
	}

	text := "👋 Welcome to Wordbox!\n\n" +
		"I help you learn English words with their Persian meaning using a five-box Leitner system.\n\n" +
		"🔹 How it works:\n" +
		"1. Add words with /add\n" +
		"2. Review them with /review\n" +
		"3. Words you know move to the next box and come back later\n" +
		"4. Words you forget go back to box 1 and are asked first"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "📖 Commands\n\n" +
		"/add english - persian - add words (one per line)\n" +
		"/review - review due words\n" +
		"/quiz - spell shuffled words\n" +
		"/stats - your progress\n" +
		"/list - your words\n" +
		"/edit <id> english - persian - fix a word\n" +
		"/delete <id> - delete a word\n" +
		"/notify <hour>|on|off - daily reminder\n\n" +
		"🔄 Review intervals:\n" +
		"Box 1: now\n" +
		"Box 2: 1 day\n" +
		"Box 3: 3 days\n" +
		"Box 4: 7 days\n" +
		"Box 5: 14 days"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Back to menu", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

// ensureUser creates the user on first contact and returns the stored record
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	user := &models.User{
		ID:                  from.ID,
		Username:            from.UserName,
		FirstName:           from.FirstName,
		NotificationEnabled: true,
		NotificationHour:    defaultNotificationHour,
	}
	if err := b.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return b.users.GetByID(ctx, from.ID)
}

func (b *Bot) handleAdd(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.TrimSpace(message.CommandArguments())
	if args == "" {
		b.setState(message.Chat.ID, stateWaitingForWords)
		return b.sendText(message.Chat.ID, addWordsHelp)
	}
	return b.addWords(ctx, message.Chat.ID, args)
}

// addWords parses "english - persian" lines and stores each pair
func (b *Bot) addWords(ctx context.Context, chatID int64, text string) error {
	var added, skipped int
	var errorMsgs []string
	now := time.Now()

	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		english, persian, ok := parseWordLine(line)
		if !ok {
			errorMsgs = append(errorMsgs, fmt.Sprintf("Line %d: expected 'english - persian'", i+1))
			continue
		}

		word := models.NewWord(english, persian, now)
		err := b.words.Create(ctx, &word)
		switch {
		case errors.Is(err, database.ErrDuplicateWord):
			skipped++
		case err != nil:
			log.Printf("Error adding word %q: %v", english, err)
			errorMsgs = append(errorMsgs, fmt.Sprintf("Line %d: could not save %q", i+1, english))
		default:
			added++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Added: %d\n", added)
	if skipped > 0 {
		fmt.Fprintf(&sb, "⏭ Already in your list: %d\n", skipped)
	}
	if len(errorMsgs) > 0 {
		sb.WriteString("\n⚠️ Problems:\n")
		sb.WriteString(strings.Join(errorMsgs, "\n"))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

// parseWordLine splits "english - persian". A tab or '=' also works as the
// separator.
func parseWordLine(line string) (english, persian string, ok bool) {
	for _, sep := range []string{" - ", "\t", "=", "-"} {
		if before, after, found := strings.Cut(line, sep); found {
			english = strings.TrimSpace(before)
			persian = strings.TrimSpace(after)
			return english, persian, english != "" && persian != ""
		}
	}
	return "", "", false
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	r, err := b.reports.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	q, err := b.engine.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to build review queue: %w", err)
	}

	text := r.Format() + fmt.Sprintf("\n🔁 Due now: %d (%d high priority)", q.Len(), len(q.HighPriority))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Back to menu", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message) error {
	query := strings.TrimSpace(message.CommandArguments())

	var (
		words []models.Word
		err   error
	)
	if query != "" {
		words, err = b.words.Search(ctx, query)
	} else {
		words, err = b.words.GetAll(ctx)
	}
	if err != nil {
		return err
	}

	if len(words) == 0 {
		return b.sendText(message.Chat.ID, "📭 No words yet. Use /add to add some.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Words (%d)\n\n", len(words))
	for i, w := range words {
		if i >= b.config.ListLimit {
			fmt.Fprintf(&sb, "… and %d more", len(words)-i)
			break
		}
		fmt.Fprintf(&sb, "%d. %s - %s (box %d)\n", w.ID, w.English, w.Persian, w.LeitnerBox)
	}
	return b.sendText(message.Chat.ID, sb.String())
}

func (b *Bot) handleDelete(ctx context.Context, message *tgbotapi.Message) error {
	id, err := strconv.ParseInt(strings.TrimSpace(message.CommandArguments()), 10, 64)
	if err != nil || id <= 0 {
		return b.sendText(message.Chat.ID, "Please give the word ID: /delete <id>. Use /list to see IDs.")
	}

	softDeleted, err := b.words.Remove(ctx, id, b.wordInQuiz(id))
	if errors.Is(err, database.ErrWordNotFound) {
		return b.sendText(message.Chat.ID, fmt.Sprintf("Word %d not found.", id))
	}
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🗑 Word %d deleted.", id)
	if softDeleted {
		text = fmt.Sprintf("🗑 Word %d deleted. Its quiz history is kept in your stats.", id)
	}
	return b.sendText(message.Chat.ID, text)
}

func (b *Bot) handleEdit(ctx context.Context, message *tgbotapi.Message) error {
	usage := "Usage: /edit <id> english - persian. Use /list to see IDs."
	idArg, rest, _ := strings.Cut(strings.TrimSpace(message.CommandArguments()), " ")
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return b.sendText(message.Chat.ID, usage)
	}
	english, persian, ok := parseWordLine(rest)
	if !ok {
		return b.sendText(message.Chat.ID, usage)
	}

	word, err := b.words.GetByID(ctx, id)
	if errors.Is(err, database.ErrWordNotFound) || (err == nil && word.IsDeleted) {
		return b.sendText(message.Chat.ID, fmt.Sprintf("Word %d not found.", id))
	}
	if err != nil {
		return err
	}

	word.English, word.Persian = english, persian
	err = b.words.Update(ctx, word)
	if errors.Is(err, database.ErrDuplicateWord) {
		return b.sendText(message.Chat.ID, fmt.Sprintf("%q is already in your list.", english))
	}
	if err != nil {
		return err
	}
	return b.sendText(message.Chat.ID, fmt.Sprintf("✏️ Word %d updated: %s - %s", id, word.English, word.Persian))
}

func (b *Bot) handleNotifyCommand(ctx context.Context, message *tgbotapi.Message) error {
	usage := "Usage: /notify <hour 0-23> | on | off"
	args := strings.ToLower(strings.TrimSpace(message.CommandArguments()))
	if args == "" {
		return b.sendText(message.Chat.ID, usage)
	}

	user, err := b.ensureUser(ctx, message.From)
	if err != nil {
		return err
	}

	enabled, hour := user.NotificationEnabled, user.NotificationHour
	switch args {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		h, err := strconv.Atoi(args)
		if err != nil || h < 0 || h > 23 {
			return b.sendText(message.Chat.ID, usage)
		}
		enabled, hour = true, h
	}

	if err := b.users.SetNotification(ctx, user.ID, enabled, hour); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	text := "🔕 Reminders are off"
	if enabled {
		text = fmt.Sprintf("🔔 Reminders are on at %d:00", hour)
	}
	return b.sendText(message.Chat.ID, text)
}

// HandleCallback handles callback queries from inline buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(answer); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}

	chatID := callback.Message.Chat.ID
	var err error

	switch data := callback.Data; {
	case data == callbackMainMenu:
		err = b.showMainMenu(chatID)
	case data == callbackReview:
		err = b.showNextReview(ctx, chatID)
	case data == callbackQuiz:
		err = b.startQuiz(ctx, chatID, callback.From.ID)
	case data == callbackQuizSkip:
		err = b.skipQuizWord(ctx, chatID)
	case data == callbackQuizRestart:
		err = b.restartQuiz(ctx, chatID, callback.From.ID)
	case data == callbackStats:
		err = b.handleStats(ctx, chatID)
	case data == callbackAddWords:
		b.setState(chatID, stateWaitingForWords)
		err = b.sendText(chatID, addWordsHelp)
	case strings.HasPrefix(data, prefixLearn):
		err = b.withWord(ctx, chatID, data, prefixLearn, b.markLearned)
	case strings.HasPrefix(data, prefixForget):
		err = b.withWord(ctx, chatID, data, prefixForget, b.markForgotten)
	case strings.HasPrefix(data, prefixMeaning):
		err = b.withWord(ctx, chatID, data, prefixMeaning, b.showMeaning)
	case strings.HasPrefix(data, prefixExample):
		err = b.withWord(ctx, chatID, data, prefixExample, b.showExample)
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}

	if err != nil {
		log.Printf("Error handling callback %q: %v", callback.Data, err)
		return b.sendText(chatID, "❌ Something went wrong. Please try again later.")
	}
	return nil
}

// withWord loads the word named in callback data and passes it to fn
func (b *Bot) withWord(ctx context.Context, chatID int64, data, prefix string,
	fn func(ctx context.Context, chatID int64, word models.Word) error) error {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid word ID in callback data: %w", err)
	}

	word, err := b.words.GetByID(ctx, id)
	if errors.Is(err, database.ErrWordNotFound) || (err == nil && word.IsDeleted) {
		return b.sendText(chatID, "This word was deleted.")
	}
	if err != nil {
		return err
	}
	return fn(ctx, chatID, *word)
}
