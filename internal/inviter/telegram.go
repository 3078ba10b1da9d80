package inviter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"
)

// TelegramTransport is the gotd-backed Transport. One Connect/Close cycle
// owns a single MTProto session restored from a Telethon string session.
type TelegramTransport struct {
	apiID         int
	apiHash       string
	stringSession string
	logger        *zap.Logger

	api     *tg.Client
	cancel  context.CancelFunc
	stopped chan struct{}

	// runErr holds the client.Run result; written before stopped closes.
	runErr error
}

var _ Transport = (*TelegramTransport)(nil)

// NewTelegramTransport creates a transport from long-lived credentials.
func NewTelegramTransport(apiID int, apiHash, stringSession string, logger *zap.Logger) *TelegramTransport {
	return &TelegramTransport{
		apiID:         apiID,
		apiHash:       apiHash,
		stringSession: stringSession,
		logger:        logger,
	}
}

// Connect starts the client in a background goroutine and waits until the
// session is up and authorized. An unauthorized session is a fatal error.
func (t *TelegramTransport) Connect(ctx context.Context) error {
	data, err := session.TelethonSession(t.stringSession)
	if err != nil {
		return fmt.Errorf("invalid string session: %w", err)
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	client := telegram.NewClient(t.apiID, t.apiHash, telegram.Options{
		SessionStorage: storage,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.stopped = make(chan struct{})

	ready := make(chan error, 1)

	go func() {
		defer close(t.stopped)
		err := client.Run(runCtx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				ready <- fmt.Errorf("failed to get auth status: %w", err)
				return err
			}
			if !status.Authorized {
				err := errors.New("session is not authorized")
				ready <- err
				return err
			}

			t.api = client.API()
			ready <- nil

			// Keep the session open until Close cancels runCtx.
			<-ctx.Done()
			return ctx.Err()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Warn("Telegram client stopped with error", zap.Error(err))
		}
		t.runErr = err
	}()

	select {
	case err := <-ready:
		if err != nil {
			cancel()
			<-t.stopped
			return err
		}
		t.logger.Info("Telegram session connected")
		return nil
	case <-t.stopped:
		// client.Run failed before the session callback ran (for example
		// an unreachable DC); surface the dial error instead of waiting
		// on a readiness signal that will never come.
		cancel()
		if t.runErr != nil {
			return fmt.Errorf("failed to connect: %w", t.runErr)
		}
		return errors.New("telegram client stopped before session was ready")
	case <-ctx.Done():
		cancel()
		<-t.stopped
		return ctx.Err()
	}
}

// Close shuts the client down and waits for the run loop to exit.
func (t *TelegramTransport) Close() error {
	if t.cancel == nil {
		return nil
	}
	t.cancel()
	<-t.stopped
	t.cancel = nil
	t.logger.Info("Telegram session closed")
	return nil
}

// ResolveChannel looks up a channel entity by its public username.
func (t *TelegramTransport) ResolveChannel(ctx context.Context, username string) (ChannelRef, error) {
	peer, err := t.api.ContactsResolveUsername(ctx, strings.TrimPrefix(username, "@"))
	if err != nil {
		return ChannelRef{}, fmt.Errorf("failed to resolve username: %w", err)
	}

	for _, chat := range peer.Chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return ChannelRef{ID: channel.ID, AccessHash: channel.AccessHash}, nil
		}
	}
	return ChannelRef{}, fmt.Errorf("%s is not a channel", username)
}

// ResolveUser looks up a user entity by account ID.
func (t *TelegramTransport) ResolveUser(ctx context.Context, id int64) (UserRef, error) {
	users, err := t.api.UsersGetUsers(ctx, []tg.InputUserClass{
		&tg.InputUser{UserID: id},
	})
	if err != nil {
		return UserRef{}, err
	}

	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == id {
			return UserRef{ID: user.ID, AccessHash: user.AccessHash}, nil
		}
	}
	return UserRef{}, fmt.Errorf("user %d not found", id)
}

// Invite adds the user to the channel, mapping provider errors onto the
// transport's error classes.
func (t *TelegramTransport) Invite(ctx context.Context, channel ChannelRef, user UserRef) error {
	_, err := t.api.ChannelsInviteToChannel(ctx, &tg.ChannelsInviteToChannelRequest{
		Channel: &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		},
		Users: []tg.InputUserClass{
			&tg.InputUser{
				UserID:     user.ID,
				AccessHash: user.AccessHash,
			},
		},
	})
	if err != nil {
		return classifyInviteError(err)
	}
	return nil
}

func classifyInviteError(err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &FloodWaitError{Duration: wait}
	}
	if tgerr.Is(err, "USER_PRIVACY_RESTRICTED") {
		return ErrPrivacyRestricted
	}
	if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
		return ErrAlreadyParticipant
	}
	return err
}
