package bot

import (
	"context"
	"fmt"

	"github.com/example/wordbox/internal/ai"
	"github.com/example/wordbox/internal/spaced_repetition"
	"github.com/example/wordbox/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showNextReview sends a card for the next word picked from a fresh queue
func (b *Bot) showNextReview(ctx context.Context, chatID int64) error {
	q, err := b.engine.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to build review queue: %w", err)
	}

	word, ok := spaced_repetition.SelectNext(q)
	if !ok {
		msg := tgbotapi.NewMessage(chatID, "🎉 Nothing to review right now. Come back later!")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		return b.sendMessage(msg)
	}

	text := fmt.Sprintf("📖 %s\n\nBox %d of %d · %d left to review", word.English, word.LeitnerBox, models.MaxBox, q.Len())
	if word.IsSkipped {
		text = "🔥 " + text
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = reviewKeyboard(word.ID)
	return b.sendMessage(msg)
}

func reviewKeyboard(wordID int64) tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{
		{
			{Text: "👀 Show meaning", CallbackData: fmt.Sprintf("%s%d", prefixMeaning, wordID)},
			{Text: "💬 Example", CallbackData: fmt.Sprintf("%s%d", prefixExample, wordID)},
		},
		{
			{Text: "✅ I know it", CallbackData: fmt.Sprintf("%s%d", prefixLearn, wordID)},
			{Text: "❌ Forgot", CallbackData: fmt.Sprintf("%s%d", prefixForget, wordID)},
		},
	})
}

func (b *Bot) markLearned(ctx context.Context, chatID int64, word models.Word) error {
	updated, err := b.engine.MarkLearned(ctx, word)
	if err != nil {
		return fmt.Errorf("failed to mark word as learned: %w", err)
	}

	text := fmt.Sprintf("✅ %s moved to box %d", updated.English, updated.LeitnerBox)
	if updated.IsMastered() {
		text = fmt.Sprintf("🏆 %s is in the last box!", updated.English)
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.showNextReview(ctx, chatID)
}

func (b *Bot) markForgotten(ctx context.Context, chatID int64, word models.Word) error {
	updated, err := b.engine.MarkForgotten(ctx, word)
	if err != nil {
		return fmt.Errorf("failed to mark word as forgotten: %w", err)
	}

	if err := b.sendText(chatID, fmt.Sprintf("❌ %s = %s\nBack to box 1, it will be asked first.", updated.English, updated.Persian)); err != nil {
		return err
	}
	return b.showNextReview(ctx, chatID)
}

func (b *Bot) showMeaning(_ context.Context, chatID int64, word models.Word) error {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s = %s", word.English, word.Persian))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "✅ I know it", CallbackData: fmt.Sprintf("%s%d", prefixLearn, word.ID)},
			{Text: "❌ Forgot", CallbackData: fmt.Sprintf("%s%d", prefixForget, word.ID)},
		},
	})
	return b.sendMessage(msg)
}

func (b *Bot) showExample(ctx context.Context, chatID int64, word models.Word) error {
	example := ai.FallbackExample(word)
	if b.chatGPT != nil {
		example = b.chatGPT.GenerateExampleWithFallback(ctx, word)
	}
	return b.sendText(chatID, "💬 "+example)
}
