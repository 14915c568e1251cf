package mocks

import (
	"context"
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// MockSessionStore is a mock implementation of SessionStore for testing
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ConfigSession
	byOwner  map[string][]string

	// SaveErr, when set, is returned by Save
	SaveErr error
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]*domain.ConfigSession),
		byOwner:  make(map[string][]string),
	}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.ConfigSession) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[session.ID]; !exists {
		m.byOwner[session.OwnerID] = append(m.byOwner[session.OwnerID], session.ID)
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.ConfigSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil
	}
	ids := m.byOwner[session.OwnerID]
	kept := ids[:0]
	for _, sid := range ids {
		if sid != id {
			kept = append(kept, sid)
		}
	}
	m.byOwner[session.OwnerID] = kept
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.byOwner[ownerID]...), nil
}

// Helper methods for testing

func (m *MockSessionStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.ConfigSession)
	m.byOwner = make(map[string][]string)
}

func (m *MockSessionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
