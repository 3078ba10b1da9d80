package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inviterbot/internal/inviter"
	"inviterbot/internal/lookup"
	"inviterbot/internal/models"
	"inviterbot/internal/storage"
)

// adminState is the tagged per-admin conversation state. Every multi-step
// interaction is a single pending prompt; any command resets it.
type adminState int

const (
	stateIdle adminState = iota
	stateAwaitingAPIID
	stateAwaitingAPIHash
	stateAwaitingStringSession
	stateAwaitingApifyToken
	stateAwaitingChannelUsername
	stateAwaitingBlockUserID
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api    *tgbotapi.BotAPI
	store  storage.Storage
	admins map[int64]bool
	states map[int64]adminState
	logger *zap.Logger

	// updateMu serializes update handling: invite runs own the underlying
	// authenticated session exclusively, so no two may overlap.
	updateMu sync.Mutex

	apifyActor string

	// Factories, replaceable in tests.
	newProvider  func(token string) lookup.Provider
	newTransport func(settings models.Settings) inviter.Transport
}
