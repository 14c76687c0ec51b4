package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store for tests and local runs.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]Session
	byUser map[string]string // user id -> session id
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Session),
		byUser: make(map[string]string),
	}
}

func (m *MemoryStore) FindActiveByHash(_ context.Context, hash string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.findActiveByHashLocked(hash); ok {
		return s, nil
	}
	return Session{}, ErrSessionNotFound
}

func (m *MemoryStore) Consume(_ context.Context, hash string, now time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.byID {
		if s.RefreshTokenHash == hash {
			snapshot := s
			s.Active = false
			s.UpdatedAt = now.UTC()
			m.byID[id] = s
			return snapshot, nil
		}
	}
	return Session{}, ErrSessionNotFound
}

func (m *MemoryStore) Upsert(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldID, ok := m.byUser[s.UserID]; ok && oldID != s.ID {
		delete(m.byID, oldID)
	}
	m.byID[s.ID] = s
	m.byUser[s.UserID] = s.ID
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byID[id]; ok && s.Active {
		s.Active = false
		s.UpdatedAt = now.UTC()
		m.byID[id] = s
	}
	return nil
}

func (m *MemoryStore) InvalidateAllForUser(_ context.Context, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.byID {
		if s.UserID == userID && s.Active {
			s.Active = false
			s.UpdatedAt = now.UTC()
			m.byID[id] = s
		}
	}
	return nil
}

func (m *MemoryStore) findActiveByHashLocked(hash string) (Session, bool) {
	for _, s := range m.byID {
		if s.Active && s.RefreshTokenHash == hash {
			return s, true
		}
	}
	return Session{}, false
}
