package inviter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTransport scripts per-user invite outcomes and records every call.
type fakeTransport struct {
	connectErr error
	resolveErr error

	// inviteErrs maps user ID to the error Invite returns for it.
	inviteErrs map[int64]error

	connectCalls int
	closeCalls   int
	invited      []int64
	resolved     []int64
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	f.connectCalls++
	return f.connectErr
}

func (f *fakeTransport) Close() error {
	f.closeCalls++
	return nil
}

func (f *fakeTransport) ResolveChannel(ctx context.Context, username string) (ChannelRef, error) {
	if f.resolveErr != nil {
		return ChannelRef{}, f.resolveErr
	}
	return ChannelRef{ID: 1000, AccessHash: 1}, nil
}

func (f *fakeTransport) ResolveUser(ctx context.Context, id int64) (UserRef, error) {
	f.resolved = append(f.resolved, id)
	return UserRef{ID: id, AccessHash: id}, nil
}

func (f *fakeTransport) Invite(ctx context.Context, channel ChannelRef, user UserRef) error {
	f.invited = append(f.invited, user.ID)
	return f.inviteErrs[user.ID]
}

// newTestInviter wires an inviter with a recording sleep so tests never
// wait on the wall clock.
func newTestInviter(transport Transport) (*Inviter, *[]time.Duration) {
	inv := New(transport, zap.NewNop())
	var slept []time.Duration
	inv.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return inv, &slept
}

func notBlocked(int64) bool { return false }

func blockedSet(ids ...int64) func(int64) bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id int64) bool { return set[id] }
}

func TestRun_AllSucceed(t *testing.T) {
	transport := &fakeTransport{}
	inv, slept := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2, 3}, notBlocked)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, summary.Added)
	assert.Empty(t, summary.Failed)
	// Flat cooldown after every successful invite.
	assert.Equal(t, []time.Duration{defaultCooldown, defaultCooldown, defaultCooldown}, *slept)
	assert.Equal(t, 1, transport.closeCalls)
}

func TestRun_BlockedUsersSkippedSilently(t *testing.T) {
	transport := &fakeTransport{}
	inv, _ := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2, 3}, blockedSet(2))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, summary.Added)
	assert.Empty(t, summary.Failed)
	// No transport call of any kind for the blocked ID.
	assert.NotContains(t, transport.resolved, int64(2))
	assert.NotContains(t, transport.invited, int64(2))
}

func TestRun_PartitionIsComplete(t *testing.T) {
	transport := &fakeTransport{inviteErrs: map[int64]error{
		2: ErrAlreadyParticipant,
		4: errors.New("rpc timeout"),
		5: &FloodWaitError{Duration: 3 * time.Second},
	}}
	inv, _ := newTestInviter(transport)

	input := []int64{1, 2, 3, 4, 5, 6, 7}
	blocked := blockedSet(6)

	summary, err := inv.Run(context.Background(), "@target", input, blocked)
	require.NoError(t, err)

	blockedCount := 0
	for _, id := range input {
		if blocked(id) {
			blockedCount++
		}
	}
	assert.Equal(t, len(input), len(summary.Added)+len(summary.Failed)+blockedCount)

	// No ID appears on both sides.
	for _, added := range summary.Added {
		assert.NotContains(t, summary.Failed, added)
	}
}

func TestRun_AlreadyParticipantGoesToFailed(t *testing.T) {
	transport := &fakeTransport{inviteErrs: map[int64]error{
		2: ErrAlreadyParticipant,
	}}
	inv, slept := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2, 3}, notBlocked)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, summary.Added)
	assert.Equal(t, []int64{2}, summary.Failed)
	// Fast-fail path: cooldown only after the two successes.
	assert.Equal(t, []time.Duration{defaultCooldown, defaultCooldown}, *slept)
}

func TestRun_PrivacyRestrictedGoesToFailed(t *testing.T) {
	transport := &fakeTransport{inviteErrs: map[int64]error{
		1: ErrPrivacyRestricted,
	}}
	inv, _ := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2}, notBlocked)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, summary.Added)
	assert.Equal(t, []int64{1}, summary.Failed)
}

func TestRun_FloodWaitSleepsThenSkipsCurrentID(t *testing.T) {
	transport := &fakeTransport{inviteErrs: map[int64]error{
		2: &FloodWaitError{Duration: 5 * time.Second},
	}}
	inv, slept := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2, 3}, notBlocked)
	require.NoError(t, err)

	// The flood-waited ID is not retried and is recorded as failed.
	assert.Equal(t, []int64{1, 3}, summary.Added)
	assert.Equal(t, []int64{2}, summary.Failed)
	assert.Equal(t, []int64{1, 2, 3}, transport.invited)

	// The instructed pause happens before ID 3 is attempted.
	require.Len(t, *slept, 3)
	assert.Equal(t, defaultCooldown, (*slept)[0])
	assert.Equal(t, 5*time.Second, (*slept)[1])
	assert.Equal(t, defaultCooldown, (*slept)[2])
}

func TestRun_ConnectFailureIsFatal(t *testing.T) {
	transport := &fakeTransport{connectErr: errors.New("not authorized")}
	inv, _ := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2}, notBlocked)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, transport.invited)
	// No session was established, nothing to release.
	assert.Equal(t, 0, transport.closeCalls)
}

func TestRun_ChannelResolutionFailureIsFatal(t *testing.T) {
	transport := &fakeTransport{resolveErr: errors.New("CHANNEL_INVALID")}
	inv, _ := newTestInviter(transport)

	summary, err := inv.Run(context.Background(), "@target", []int64{1, 2}, notBlocked)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, transport.invited, "no partial invites after a fatal resolution error")
	assert.Equal(t, 1, transport.closeCalls)
}

func TestRun_CloseRunsExactlyOncePerRun(t *testing.T) {
	testCases := []struct {
		name      string
		transport *fakeTransport
	}{
		{"normal run", &fakeTransport{}},
		{"resolution failure", &fakeTransport{resolveErr: errors.New("boom")}},
		{"per-user failures", &fakeTransport{inviteErrs: map[int64]error{
			1: errors.New("boom"),
			2: ErrPrivacyRestricted,
		}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, _ := newTestInviter(tc.transport)
			inv.Run(context.Background(), "@target", []int64{1, 2}, notBlocked)
			assert.Equal(t, 1, tc.transport.closeCalls)
		})
	}
}

// panicTransport blows up mid-loop to exercise the cleanup guarantee.
type panicTransport struct {
	fakeTransport
}

func (p *panicTransport) Invite(ctx context.Context, channel ChannelRef, user UserRef) error {
	panic("unexpected transport failure")
}

func TestRun_CloseRunsOnPanic(t *testing.T) {
	transport := &panicTransport{}
	inv, _ := newTestInviter(transport)

	assert.Panics(t, func() {
		inv.Run(context.Background(), "@target", []int64{1}, notBlocked)
	})
	assert.Equal(t, 1, transport.closeCalls)
}

func TestRun_CancelledContextStopsLoop(t *testing.T) {
	transport := &fakeTransport{}
	inv := New(transport, zap.NewNop())
	inv.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := inv.Run(ctx, "@target", []int64{1, 2, 3}, notBlocked)
	require.Error(t, err)
	// The first invite succeeded before the cooldown observed cancellation.
	assert.Equal(t, []int64{1}, summary.Added)
	assert.Equal(t, 1, transport.closeCalls)
}

func TestClassifyInviteError(t *testing.T) {
	floodErr := classifyInviteError(tgerr.New(420, "FLOOD_WAIT_5"))
	var floodWait *FloodWaitError
	require.ErrorAs(t, floodErr, &floodWait)
	assert.Equal(t, 5*time.Second, floodWait.Duration)

	assert.ErrorIs(t, classifyInviteError(tgerr.New(400, "USER_PRIVACY_RESTRICTED")), ErrPrivacyRestricted)
	assert.ErrorIs(t, classifyInviteError(tgerr.New(400, "USER_ALREADY_PARTICIPANT")), ErrAlreadyParticipant)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classifyInviteError(plain))
}
