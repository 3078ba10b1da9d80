package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message from an admin
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			msg := tgbotapi.NewMessage(message.Chat.ID, "An error occurred while processing your request. Please try again.")
			b.send(msg)
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Any command interrupts a pending prompt
	if message.IsCommand() {
		b.states[userID] = stateIdle
		switch message.Command() {
		case "start":
			b.handleStart(message)
		case "help":
			b.handleHelp(message)
		case "cancel":
			b.handleCancel(message)
		default:
			msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /start to see available options.")
			b.send(msg)
		}
		return
	}

	// CSV uploads are accepted regardless of prompt state
	if message.Document != nil {
		b.states[userID] = stateIdle
		b.handleDocument(ctx, message)
		return
	}

	// Text input feeds the pending prompt, if any
	if state := b.states[userID]; state != stateIdle {
		b.handlePromptInput(ctx, message, state)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Please use the menu buttons or a command. Use /start to see the menu.")
	b.send(msg)
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()

	// Answer the callback query to remove the loading state
	if b.api != nil {
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
	}

	// Callbacks on messages the bot can no longer access carry no message,
	// so there is no chat to reply into.
	if query.Message == nil {
		b.logger.Warn("Ignoring callback without an accessible message", zap.String("data", query.Data))
		return
	}

	b.dispatchCallback(ctx, query)
}
