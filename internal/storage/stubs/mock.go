package stubs

import (
	"context"
	"strconv"
	"sync"

	"inviterbot/internal/models"
)

// MockStorage is an in-memory implementation of the Storage interface for testing
type MockStorage struct {
	mu       sync.RWMutex
	settings models.Settings
	blocked  []int64
	sessions map[string]models.SessionRecord
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		blocked:  []int64{},
		sessions: make(map[string]models.SessionRecord),
	}
}

func (m *MockStorage) Settings(ctx context.Context) (models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MockStorage) UpdateSettings(ctx context.Context, fn func(*models.Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.settings)
	return nil
}

func (m *MockStorage) BlockUser(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blocked {
		if b == id {
			return false, nil
		}
	}
	m.blocked = append(m.blocked, id)
	return true, nil
}

func (m *MockStorage) UnblockUser(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.blocked {
		if b == id {
			m.blocked = append(m.blocked[:i], m.blocked[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStorage) BlockedUsers(ctx context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.blocked))
	copy(out, m.blocked)
	return out, nil
}

func (m *MockStorage) IsBlocked(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.blocked {
		if b == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStorage) SetSession(ctx context.Context, userID int64, rec models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[strconv.FormatInt(userID, 10)] = rec
	return nil
}

func (m *MockStorage) GetSession(ctx context.Context, userID int64) (models.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[strconv.FormatInt(userID, 10)]
	if !ok {
		return models.SessionRecord{}, nil
	}
	return rec, nil
}

func (m *MockStorage) Close() error {
	return nil
}
