package storage

import (
	"context"

	"inviterbot/internal/models"
)

// Storage defines the interface for persisted bot state: settings,
// the block list, and per-admin lookup sessions.
type Storage interface {
	// Settings operations
	Settings(ctx context.Context) (models.Settings, error)

	// UpdateSettings applies fn to the current settings and persists the
	// result before returning.
	UpdateSettings(ctx context.Context, fn func(*models.Settings)) error

	// Block list operations

	// BlockUser adds id to the block list. Returns false if the id was
	// already present (no change is persisted in that case).
	BlockUser(ctx context.Context, id int64) (bool, error)

	// UnblockUser removes id from the block list. Returns false if the id
	// was not present.
	UnblockUser(ctx context.Context, id int64) (bool, error)

	// BlockedUsers returns the block list in storage order.
	BlockedUsers(ctx context.Context) ([]int64, error)

	IsBlocked(ctx context.Context, id int64) (bool, error)

	// Session operations

	// SetSession overwrites the session record for userID. Last write wins.
	SetSession(ctx context.Context, userID int64, rec models.SessionRecord) error

	// GetSession returns the session record for userID, or a zero record
	// if none exists. It never fails on a missing record.
	GetSession(ctx context.Context, userID int64) (models.SessionRecord, error)

	// Lifecycle
	Close() error
}
