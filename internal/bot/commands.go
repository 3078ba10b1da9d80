package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStart shows the main menu
func (b *Bot) handleStart(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, "Hello! Please choose one of the options below:")
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

// handleHelp shows the help text
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := `Commands:
/start - Show the main menu
/help - Show this help message
/cancel - Cancel the current operation

Menu options:
- Settings: configure Telegram API credentials, string session, Apify token and target channel
- Upload CSV: send a CSV of phone numbers (international format, e.g. +1234567890) to check which are on Telegram
- Add to channel: invite the checked users into the target channel
- Manage blocked: block or unblock user IDs excluded from invites
- Export data: download the checked users as JSON or list their IDs

Notes:
- Phone numbers are read from the first CSV column; other columns are ignored.
- After uploading and processing a CSV, use "Add to channel" to invite the registered users.`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	b.send(msg)
}

// handleCancel aborts any pending prompt and shows the main menu
func (b *Bot) handleCancel(message *tgbotapi.Message) {
	b.states[message.From.ID] = stateIdle

	msg := tgbotapi.NewMessage(message.Chat.ID, "Current operation cancelled.")
	b.send(msg)

	menu := tgbotapi.NewMessage(message.Chat.ID, "Please choose one of the options below:")
	menu.ReplyMarkup = mainMenuKeyboard()
	b.send(menu)
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", "settings"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📂 Upload CSV", "upload_csv"),
			tgbotapi.NewInlineKeyboardButtonData("➕ Add to channel", "add_to_channel"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛑 Manage blocked", "manage_blocked"),
			tgbotapi.NewInlineKeyboardButtonData("📤 Export data", "export_data"),
		),
	)
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 Telegram API ID", "set_api_id"),
			tgbotapi.NewInlineKeyboardButtonData("🔧 Telegram API Hash", "set_api_hash"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 String Session", "set_string_session"),
			tgbotapi.NewInlineKeyboardButtonData("🔧 Apify API Token", "set_apify_token"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 Target Channel", "set_channel_username"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "back_to_main"),
		),
	)
}

func exportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Export registered users (JSON)", "export_registered_users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔢 List registered user IDs", "list_user_ids"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "back_to_main"),
		),
	)
}
