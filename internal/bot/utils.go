package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send delivers any chattable, skipping when no API is attached (tests)
func (b *Bot) send(c tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

// sendText sends a plain text message to a chat
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// sendDocument uploads an in-memory file to a chat
func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	b.send(doc)
}

// replyError reports a storage or transport failure to the admin
func (b *Bot) replyError(chatID int64, err error) {
	b.logger.Error("Request failed", zap.Error(err))
	b.sendText(chatID, "An error occurred. Please try again.")
}
