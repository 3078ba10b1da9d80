// Package jsonfile persists bot state as a single flat JSON file.
//
// The file is read once at startup and rewritten wholesale on every
// mutation. Writes go through a temp file in the same directory followed
// by a rename, so readers never observe a partial write.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"inviterbot/internal/models"
	"inviterbot/internal/storage"
)

// fileData mirrors the on-disk layout of the config file. Settings fields
// are embedded so their keys sit at the top level next to the block list
// and sessions.
type fileData struct {
	models.Settings
	BlockedUsers []int64                         `json:"blocked_users"`
	UserSessions map[string]models.SessionRecord `json:"user_sessions"`
}

// Store is a JSON-file backed implementation of storage.Storage.
type Store struct {
	mu     sync.Mutex
	path   string
	data   fileData
	logger *zap.Logger
}

var _ storage.Storage = (*Store)(nil)

// Open loads the config file at path, creating it with defaults if it does
// not exist. A file that cannot be parsed is reset to defaults.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		data:   defaultData(),
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Error("Config file is corrupted, resetting to defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		s.data = defaultData()
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("failed to reset config file: %w", err)
		}
		return s, nil
	}

	// Maps may be null in a hand-edited file.
	if s.data.UserSessions == nil {
		s.data.UserSessions = make(map[string]models.SessionRecord)
	}
	if s.data.BlockedUsers == nil {
		s.data.BlockedUsers = []int64{}
	}

	return s, nil
}

func defaultData() fileData {
	return fileData{
		BlockedUsers: []int64{},
		UserSessions: make(map[string]models.SessionRecord),
	}
}

// persist rewrites the whole file atomically. Caller must hold s.mu.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings, nil
}

// UpdateSettings applies fn and persists synchronously before returning.
func (s *Store) UpdateSettings(ctx context.Context, fn func(*models.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.data.Settings)
	return s.persist()
}

// BlockUser adds id to the block list. Adding an already-blocked id is a
// no-op and reports false.
func (s *Store) BlockUser(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, blocked := range s.data.BlockedUsers {
		if blocked == id {
			return false, nil
		}
	}
	s.data.BlockedUsers = append(s.data.BlockedUsers, id)
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// UnblockUser removes id from the block list, reporting false if absent.
func (s *Store) UnblockUser(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, blocked := range s.data.BlockedUsers {
		if blocked == id {
			s.data.BlockedUsers = append(s.data.BlockedUsers[:i], s.data.BlockedUsers[i+1:]...)
			if err := s.persist(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// BlockedUsers returns the block list in storage (insertion) order.
func (s *Store) BlockedUsers(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int64, len(s.data.BlockedUsers))
	copy(out, s.data.BlockedUsers)
	return out, nil
}

func (s *Store) IsBlocked(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, blocked := range s.data.BlockedUsers {
		if blocked == id {
			return true, nil
		}
	}
	return false, nil
}

// SetSession overwrites the record for userID and persists it.
func (s *Store) SetSession(ctx context.Context, userID int64, rec models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UserSessions[strconv.FormatInt(userID, 10)] = rec
	return s.persist()
}

// GetSession returns the record for userID, or a zero record if none exists.
func (s *Store) GetSession(ctx context.Context, userID int64) (models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data.UserSessions[strconv.FormatInt(userID, 10)]
	if !ok {
		return models.SessionRecord{}, nil
	}
	return rec, nil
}

// Close implements storage.Storage. All writes are synchronous, so there
// is nothing to flush.
func (s *Store) Close() error {
	return nil
}
