package stubs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviterbot/internal/models"
)

func TestMockStorage_BlockList(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	added, err := m.BlockUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.BlockUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, added)

	blocked, err := m.IsBlocked(ctx, 1)
	require.NoError(t, err)
	assert.True(t, blocked)

	removed, err := m.UnblockUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.UnblockUser(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMockStorage_Sessions(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	rec, err := m.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rec.Results)

	err = m.SetSession(ctx, 1, models.SessionRecord{Results: []models.PhoneLookupResult{
		{PhoneNumber: "+100", IsRegistered: true, UserID: 10},
	}})
	require.NoError(t, err)

	rec, err = m.GetSession(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rec.Results, 1)
	assert.Equal(t, int64(10), rec.Results[0].UserID)
}

func TestMockStorage_Settings(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	err := m.UpdateSettings(ctx, func(s *models.Settings) {
		s.ApifyAPIToken = "token"
	})
	require.NoError(t, err)

	settings, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token", settings.ApifyAPIToken)
	assert.False(t, settings.InviteReady())
}
