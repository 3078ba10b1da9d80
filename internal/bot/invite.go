package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inviterbot/internal/inviter"
)

// handleAddToChannel runs the bulk invite over the admin's last lookup
// results, excluding blocked users, and reports the outcome partition.
func (b *Bot) handleAddToChannel(ctx context.Context, userID, chatID int64) {
	session, err := b.store.GetSession(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(session.Results) == 0 {
		b.sendText(chatID, "Please upload and process a CSV file first.")
		return
	}

	var targetIDs []int64
	for _, result := range session.Results {
		if result.IsRegistered && result.UserID != 0 {
			targetIDs = append(targetIDs, result.UserID)
		}
	}
	if len(targetIDs) == 0 {
		b.sendText(chatID, "No phone numbers registered on Telegram were found.")
		return
	}

	settings, err := b.store.Settings(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if !settings.InviteReady() {
		b.sendText(chatID, "The bot is not fully configured. Please set the Telegram API ID, API Hash, String Session and target channel in Settings.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("Adding %d users to %s. Please wait...", len(targetIDs), settings.TargetChannelUsername))

	isBlocked := func(id int64) bool {
		blocked, err := b.store.IsBlocked(ctx, id)
		if err != nil {
			b.logger.Error("Failed to check block list", zap.Int64("user_id", id), zap.Error(err))
			return false
		}
		return blocked
	}

	inv := inviter.New(b.newTransport(settings), b.logger)
	summary, err := inv.Run(ctx, settings.TargetChannelUsername, targetIDs, isBlocked)
	if err != nil {
		b.logger.Error("Invite run failed", zap.Error(err))
		b.sendText(chatID, fmt.Sprintf("Failed to add users to the channel: %v", err))
		return
	}

	b.sendText(chatID, fmt.Sprintf("Adding users finished!\n\nAdded: %d\nFailed: %d",
		len(summary.Added), len(summary.Failed)))

	if len(summary.Added) > 0 {
		b.sendText(chatID, "Added users:\n"+joinIDs(summary.Added))
	}
	if len(summary.Failed) > 0 {
		b.sendText(chatID, "Failed users:\n"+joinIDs(summary.Failed))
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
