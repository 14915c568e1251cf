package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore in process memory.
// Used when no Redis is configured; state does not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ConfigSession
}

// NewSessionStore creates a new in-memory SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.ConfigSession),
	}
}

// Save stores a copy of the session
func (s *SessionStore) Save(ctx context.Context, session *domain.ConfigSession) error {
	if time.Until(session.ExpiresAt) <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	c.Groups = cloneGroups(session.Groups)
	s.sessions[session.ID] = &c
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.ConfigSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || session.IsExpired() {
		return nil, domain.ErrSessionNotFound
	}
	c := *session
	c.Groups = cloneGroups(session.Groups)
	return &c, nil
}

// Delete deletes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// ListByOwner lists the live session IDs owned by the editor
func (s *SessionStore) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for id, session := range s.sessions {
		if session.OwnerID == ownerID && !session.IsExpired() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func cloneGroups(groups []domain.RetrievalGroup) []domain.RetrievalGroup {
	out := make([]domain.RetrievalGroup, 0, len(groups))
	for i := range groups {
		out = append(out, groups[i].Clone())
	}
	return out
}
