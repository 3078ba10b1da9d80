package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inviterbot/internal/inviter"
	"inviterbot/internal/lookup"
	"inviterbot/internal/models"
	"inviterbot/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, store storage.Storage, adminUserIDs []int64, apifyActor string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	admins := make(map[int64]bool)
	for _, id := range adminUserIDs {
		admins[id] = true
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:        api,
		store:      store,
		admins:     admins,
		states:     make(map[int64]adminState),
		logger:     logger,
		apifyActor: apifyActor,
		newProvider: func(token string) lookup.Provider {
			return lookup.NewApifyProvider(token, apifyActor)
		},
		newTransport: func(settings models.Settings) inviter.Transport {
			return inviter.NewTelegramTransport(
				settings.TelegramAPIID,
				settings.TelegramAPIHash,
				settings.TelegramStringSession,
				logger,
			)
		},
	}, nil
}
