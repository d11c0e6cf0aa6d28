package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/example/wordbox/internal/excel"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleImportCommand(message *tgbotapi.Message) error {
	if message.From == nil || !b.isAdmin(message.From.ID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "This command is only available for administrators.")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		return b.sendMessage(msg)
	}

	b.setState(message.Chat.ID, stateWaitingForFile)
	return b.sendText(message.Chat.ID, "Send an .xlsx or .csv file. Column A holds the English word and column B the Persian meaning; the first row is a header.")
}

// handleDocument imports an uploaded spreadsheet
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	doc := message.Document

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return b.sendText(chatID, "❌ Only .xlsx and .csv files are supported.")
	}
	if int64(doc.FileSize) > b.config.MaxUploadBytes {
		return b.sendText(chatID, "❌ The file is too large.")
	}

	body, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		log.Printf("Error downloading file %s: %v", doc.FileName, err)
		return b.sendText(chatID, "❌ Could not download the file.")
	}
	defer body.Close()

	result, err := b.importer.ImportReader(ctx, io.LimitReader(body, b.config.MaxUploadBytes), ext, excel.DefaultImportConfig())
	if err != nil {
		log.Printf("Error importing file %s: %v", doc.FileName, err)
		return b.sendText(chatID, "❌ Could not read the file: "+err.Error())
	}

	var sb strings.Builder
	sb.WriteString("📥 Import finished\n\n")
	fmt.Fprintf(&sb, "Rows processed: %d\n", result.TotalProcessed)
	fmt.Fprintf(&sb, "Words added: %d\n", result.Created)
	fmt.Fprintf(&sb, "Rows skipped: %d\n", result.Skipped)
	if len(result.Errors) > 0 {
		sb.WriteString("\n⚠️ Problems:\n")
		for i, e := range result.Errors {
			if i == 10 {
				fmt.Fprintf(&sb, "… and %d more\n", len(result.Errors)-i)
				break
			}
			sb.WriteString(e + "\n")
		}
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
