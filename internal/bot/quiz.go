package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/wordbox/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) activeQuiz(chatID int64) *quiz.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quizzes[chatID]
}

func (b *Bot) startQuiz(ctx context.Context, chatID, userID int64) error {
	session := quiz.NewSession(b.words, b.stats, b.quizResults, quiz.Config{
		WordCount: b.config.QuizWordCount,
		UserID:    userID,
	})

	b.mu.Lock()
	b.quizzes[chatID] = session
	b.mu.Unlock()

	return b.askQuizWord(ctx, chatID, session)
}

func (b *Bot) restartQuiz(ctx context.Context, chatID, userID int64) error {
	session := b.activeQuiz(chatID)
	if session == nil {
		return b.startQuiz(ctx, chatID, userID)
	}
	session.Restart()
	return b.askQuizWord(ctx, chatID, session)
}

func (b *Bot) endQuiz(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.quizzes, chatID)
}

// wordInQuiz reports whether a running quiz is currently asking the word
func (b *Bot) wordInQuiz(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, session := range b.quizzes {
		if q, ok := session.Current(); ok && q.Word.ID == id {
			return true
		}
	}
	return false
}

func (b *Bot) askQuizWord(ctx context.Context, chatID int64, session *quiz.Session) error {
	q, err := session.Next(ctx)
	switch {
	case errors.Is(err, quiz.ErrNoWords):
		b.endQuiz(chatID)
		msg := tgbotapi.NewMessage(chatID, "No words available. Please add some words first!")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		return b.sendMessage(msg)
	case errors.Is(err, quiz.ErrGameOver):
		return b.sendGameOver(chatID, session)
	case err != nil:
		return err
	}

	text := fmt.Sprintf("🔤 Word %d of %d\n\n%s\n\nType the correct word.", q.Number, q.Total, q.Shuffled)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⏭ Skip", CallbackData: callbackQuizSkip}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) sendGameOver(chatID int64, session *quiz.Session) error {
	score, correct := session.Score()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🏁 Game completed! Score: %d (%d correct)", score, correct))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "🔄 Play again", CallbackData: callbackQuizRestart},
			{Text: "⬅️ Menu", CallbackData: callbackMainMenu},
		},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleGuess(ctx context.Context, chatID int64, text string) error {
	session := b.activeQuiz(chatID)
	if session == nil {
		return nil
	}

	out, err := session.Guess(ctx, text)
	switch {
	case errors.Is(err, quiz.ErrEmptyGuess):
		return b.sendText(chatID, "Please enter your guess")
	case errors.Is(err, quiz.ErrNoActiveWord):
		return b.sendText(chatID, "The quiz is over. Tap Play again or use /quiz.")
	case err != nil:
		return err
	}
	return b.afterAnswer(ctx, chatID, session, out)
}

func (b *Bot) skipQuizWord(ctx context.Context, chatID int64) error {
	session := b.activeQuiz(chatID)
	if session == nil {
		return b.sendText(chatID, "No quiz is running. Use /quiz to start one.")
	}

	out, err := session.Skip(ctx)
	if errors.Is(err, quiz.ErrNoActiveWord) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.afterAnswer(ctx, chatID, session, out)
}

func (b *Bot) afterAnswer(ctx context.Context, chatID int64, session *quiz.Session, out quiz.Outcome) error {
	text := fmt.Sprintf("❌ The answer was: %s", out.Answer)
	switch {
	case out.Dropped:
		text = fmt.Sprintf("🗑 %q was deleted, moving on.", out.Answer)
	case out.Correct:
		text = fmt.Sprintf("✅ Correct! +%d points", quiz.PointsPerWord)
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}

	if out.Finished {
		return b.sendGameOver(chatID, session)
	}
	return b.askQuizWord(ctx, chatID, session)
}
