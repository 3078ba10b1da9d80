package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inviterbot/internal/models"
)

// handlePromptInput routes text input to the pending prompt for this admin.
// Invalid input re-prompts without clearing the state; valid input persists
// the value and returns to idle.
func (b *Bot) handlePromptInput(ctx context.Context, message *tgbotapi.Message, state adminState) {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch state {
	case stateAwaitingAPIID:
		apiID, err := strconv.Atoi(text)
		if err != nil || apiID <= 0 {
			b.sendText(chatID, "Please enter a valid number for the Telegram API ID:")
			return
		}
		b.saveSetting(ctx, userID, chatID, "Telegram API ID", func(s *models.Settings) {
			s.TelegramAPIID = apiID
		})

	case stateAwaitingAPIHash:
		if text == "" {
			b.sendText(chatID, "Please enter a valid Telegram API Hash:")
			return
		}
		b.saveSetting(ctx, userID, chatID, "Telegram API Hash", func(s *models.Settings) {
			s.TelegramAPIHash = text
		})

	case stateAwaitingStringSession:
		if text == "" {
			b.sendText(chatID, "Please enter a valid Telegram String Session:")
			return
		}
		b.saveSetting(ctx, userID, chatID, "Telegram String Session", func(s *models.Settings) {
			s.TelegramStringSession = text
		})

	case stateAwaitingApifyToken:
		// Apify tokens are long alphanumeric strings
		if len(text) < 20 {
			b.sendText(chatID, "Please enter a valid Apify API Token:")
			return
		}
		b.saveSetting(ctx, userID, chatID, "Apify API Token", func(s *models.Settings) {
			s.ApifyAPIToken = text
		})

	case stateAwaitingChannelUsername:
		if !strings.HasPrefix(text, "@") || len(text) < 2 {
			b.sendText(chatID, "Please enter the channel username starting with @ (e.g. @yourchannel):")
			return
		}
		b.saveSetting(ctx, userID, chatID, "Target channel username", func(s *models.Settings) {
			s.TargetChannelUsername = text
		})

	case stateAwaitingBlockUserID:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil || targetID <= 0 {
			b.sendText(chatID, "Please enter a valid Telegram user ID (a number):")
			return
		}

		added, err := b.store.BlockUser(ctx, targetID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.states[userID] = stateIdle

		if added {
			b.logger.Info("User blocked", zap.Int64("target_id", targetID))
			b.sendText(chatID, fmt.Sprintf("User %d has been blocked.", targetID))
		} else {
			b.sendText(chatID, fmt.Sprintf("User %d is already blocked.", targetID))
		}
		b.showBlockedMenu(ctx, chatID)
	}
}

// saveSetting persists one settings mutation and confirms it
func (b *Bot) saveSetting(ctx context.Context, userID, chatID int64, name string, fn func(*models.Settings)) {
	if err := b.store.UpdateSettings(ctx, fn); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.states[userID] = stateIdle

	b.logger.Info("Setting updated", zap.String("setting", name), zap.Int64("admin_id", userID))
	b.sendText(chatID, fmt.Sprintf("%s has been set successfully.", name))
	b.showSettingsMenu(chatID)
}
