package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"inviterbot/internal/models"
)

// handleExportRegistered sends the registered lookup results as a JSON document
func (b *Bot) handleExportRegistered(ctx context.Context, userID, chatID int64) {
	registered, err := b.registeredResults(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(registered) == 0 {
		b.sendText(chatID, "There is no data to export. Please upload and process a CSV file first.")
		return
	}

	data, err := json.MarshalIndent(registered, "", "  ")
	if err != nil {
		b.logger.Error("Failed to marshal registered users", zap.Error(err))
		b.sendText(chatID, "An error occurred while exporting the data.")
		return
	}

	b.sendDocument(chatID, fmt.Sprintf("registered_users_%d.json", userID), data,
		"List of registered users")
}

// handleListUserIDs sends the registered user IDs as a text message
func (b *Bot) handleListUserIDs(ctx context.Context, userID, chatID int64) {
	registered, err := b.registeredResults(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(registered) == 0 {
		b.sendText(chatID, "There is no data to show. Please upload and process a CSV file first.")
		return
	}

	ids := make([]int64, 0, len(registered))
	for _, result := range registered {
		ids = append(ids, result.UserID)
	}
	b.sendText(chatID, "Registered user IDs:\n"+joinIDs(ids))
}

// registeredResults returns the admin's last lookup results that resolved
// to a Telegram account.
func (b *Bot) registeredResults(ctx context.Context, userID int64) ([]models.PhoneLookupResult, error) {
	session, err := b.store.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	var registered []models.PhoneLookupResult
	for _, result := range session.Results {
		if result.IsRegistered && result.UserID != 0 {
			registered = append(registered, result)
		}
	}
	return registered, nil
}
