package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// dispatchCallback routes a callback query by its data payload
func (b *Bot) dispatchCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == "settings":
		b.showSettingsMenu(chatID)

	case data == "upload_csv":
		settings, err := b.store.Settings(ctx)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		if settings.ApifyAPIToken == "" {
			b.sendText(chatID, "Please set the Apify API Token in Settings first.")
			return
		}
		b.sendText(chatID, "Please send the CSV file with phone numbers.")

	case data == "add_to_channel":
		b.handleAddToChannel(ctx, userID, chatID)

	case data == "manage_blocked":
		b.showBlockedMenu(ctx, chatID)

	case data == "export_data":
		msg := tgbotapi.NewMessage(chatID, "Please choose what to export:")
		msg.ReplyMarkup = exportKeyboard()
		b.send(msg)

	case data == "back_to_main":
		b.states[userID] = stateIdle
		msg := tgbotapi.NewMessage(chatID, "Please choose one of the options below:")
		msg.ReplyMarkup = mainMenuKeyboard()
		b.send(msg)

	case data == "set_api_id":
		b.states[userID] = stateAwaitingAPIID
		b.sendText(chatID, "Please enter the Telegram API ID (a number):")

	case data == "set_api_hash":
		b.states[userID] = stateAwaitingAPIHash
		b.sendText(chatID, "Please enter the Telegram API Hash:")

	case data == "set_string_session":
		b.states[userID] = stateAwaitingStringSession
		b.sendText(chatID, "Please enter the Telegram String Session:")

	case data == "set_apify_token":
		b.states[userID] = stateAwaitingApifyToken
		b.sendText(chatID, "Please enter the Apify API Token:")

	case data == "set_channel_username":
		b.states[userID] = stateAwaitingChannelUsername
		b.sendText(chatID, "Please enter the target channel username (starting with @, e.g. @yourchannel):")

	case data == "block_user_prompt":
		b.states[userID] = stateAwaitingBlockUserID
		b.sendText(chatID, "Please enter the Telegram user ID to block (a number):")

	case strings.HasPrefix(data, "unblock_user_"):
		targetID, err := strconv.ParseInt(strings.TrimPrefix(data, "unblock_user_"), 10, 64)
		if err != nil {
			b.sendText(chatID, "Invalid user ID.")
			return
		}
		b.handleUnblock(ctx, chatID, targetID)

	case data == "export_registered_users":
		b.handleExportRegistered(ctx, userID, chatID)

	case data == "list_user_ids":
		b.handleListUserIDs(ctx, userID, chatID)

	default:
		b.sendText(chatID, "Invalid option. Please try again.")
	}
}

// showSettingsMenu renders the settings submenu with the current values summary
func (b *Bot) showSettingsMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Bot settings:\n\nChoose a setting to enter or update its value:")
	msg.ReplyMarkup = settingsKeyboard()
	b.send(msg)
}

// showBlockedMenu lists blocked users with per-user unblock buttons
func (b *Bot) showBlockedMenu(ctx context.Context, chatID int64) {
	blocked, err := b.store.BlockedUsers(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	var text strings.Builder
	if len(blocked) == 0 {
		text.WriteString("The blocked users list is empty.")
	} else {
		text.WriteString("Blocked users:\n\n")
		for _, id := range blocked {
			text.WriteString(fmt.Sprintf("• %d\n", id))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Block a user", "block_user_prompt"),
		),
	}
	for _, id := range blocked {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🔓 Unblock %d", id),
				fmt.Sprintf("unblock_user_%d", id),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "back_to_main"),
	))

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
}

// handleUnblock removes a user from the block list
func (b *Bot) handleUnblock(ctx context.Context, chatID int64, targetID int64) {
	removed, err := b.store.UnblockUser(ctx, targetID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	if removed {
		b.logger.Info("User unblocked", zap.Int64("target_id", targetID))
		b.sendText(chatID, fmt.Sprintf("User %d has been removed from the blocked list.", targetID))
	} else {
		b.sendText(chatID, fmt.Sprintf("User %d was not found in the blocked list.", targetID))
	}

	b.showBlockedMenu(ctx, chatID)
}
