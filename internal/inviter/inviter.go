// Package inviter implements the bulk channel invite workflow: a
// sequential, rate-limited loop over resolved account IDs that survives
// provider throttling and per-user errors while producing a deterministic
// added/failed partition.
package inviter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inviterbot/internal/models"
)

// defaultCooldown is the flat pause after every successful invite.
const defaultCooldown = time.Second

// FloodWaitError is a provider instruction to pause before further
// requests. It is a mandated cooldown, not a per-user failure class.
type FloodWaitError struct {
	Duration time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: pause for %s", e.Duration)
}

// Per-invite error classes. Both are recorded as failures and the run
// continues with the next ID.
var (
	ErrPrivacyRestricted  = errors.New("user privacy settings forbid channel invites")
	ErrAlreadyParticipant = errors.New("user is already a channel participant")
)

// ChannelRef identifies a resolved channel entity.
type ChannelRef struct {
	ID         int64
	AccessHash int64
}

// UserRef identifies a resolved user entity.
type UserRef struct {
	ID         int64
	AccessHash int64
}

// Transport performs the actual Telegram client-API calls. Errors from
// Invite are classified via FloodWaitError, ErrPrivacyRestricted and
// ErrAlreadyParticipant; anything else is a generic per-invite failure.
type Transport interface {
	// Connect establishes the authenticated session. An absent or
	// unauthorized session is a fatal error and is not retried.
	Connect(ctx context.Context) error

	// Close releases the session. Called exactly once for every run in
	// which Connect succeeded.
	Close() error

	ResolveChannel(ctx context.Context, username string) (ChannelRef, error)
	ResolveUser(ctx context.Context, id int64) (UserRef, error)
	Invite(ctx context.Context, channel ChannelRef, user UserRef) error
}

// Inviter runs bulk invite operations over a Transport. A single Inviter
// run owns its transport session exclusively; runs are not concurrent.
type Inviter struct {
	transport Transport
	logger    *zap.Logger
	cooldown  time.Duration

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an inviter over the given transport.
func New(transport Transport, logger *zap.Logger) *Inviter {
	return &Inviter{
		transport: transport,
		logger:    logger,
		cooldown:  defaultCooldown,
		sleep:     sleepCtx,
	}
}

// Run connects, resolves the target channel by username, then invites the
// given account IDs strictly in input order.
//
// Connect and channel-resolution failures abort the whole run with no
// partial summary. Blocked IDs are skipped silently: no transport call,
// no summary entry. Every processed ID lands in exactly one of
// summary.Added or summary.Failed. After a successful invite the loop
// pauses for the fixed cooldown. A flood wait sleeps the instructed
// duration, records the ID as failed and moves on; the ID is not retried.
func (inv *Inviter) Run(ctx context.Context, channelUsername string, userIDs []int64, isBlocked func(int64) bool) (*models.InviteSummary, error) {
	if err := inv.transport.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := inv.transport.Close(); err != nil {
			inv.logger.Warn("Failed to close invite session", zap.Error(err))
		}
	}()

	channel, err := inv.transport.ResolveChannel(ctx, channelUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", channelUsername, err)
	}
	inv.logger.Info("Target channel resolved",
		zap.String("channel", channelUsername),
		zap.Int64("channel_id", channel.ID),
	)

	summary := &models.InviteSummary{}

	for _, userID := range userIDs {
		if isBlocked != nil && isBlocked(userID) {
			inv.logger.Info("User is blocked, skipping", zap.Int64("user_id", userID))
			continue
		}

		if err := inv.inviteOne(ctx, channel, userID); err != nil {
			summary.Failed = append(summary.Failed, userID)

			var floodWait *FloodWaitError
			switch {
			case errors.As(err, &floodWait):
				inv.logger.Warn("Flood wait from provider",
					zap.Int64("user_id", userID),
					zap.Duration("wait", floodWait.Duration),
				)
				if err := inv.sleep(ctx, floodWait.Duration); err != nil {
					return summary, err
				}
			case errors.Is(err, ErrPrivacyRestricted):
				inv.logger.Warn("User privacy settings prevent invite", zap.Int64("user_id", userID))
			case errors.Is(err, ErrAlreadyParticipant):
				inv.logger.Info("User is already a participant", zap.Int64("user_id", userID))
			default:
				inv.logger.Error("Failed to invite user",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
			continue
		}

		summary.Added = append(summary.Added, userID)
		inv.logger.Info("User invited", zap.Int64("user_id", userID))

		if err := inv.sleep(ctx, inv.cooldown); err != nil {
			return summary, err
		}
	}

	inv.logger.Info("Invite run finished",
		zap.Int("added", len(summary.Added)),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

func (inv *Inviter) inviteOne(ctx context.Context, channel ChannelRef, userID int64) error {
	user, err := inv.transport.ResolveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}
	return inv.transport.Invite(ctx, channel, user)
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
