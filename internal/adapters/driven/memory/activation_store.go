package memory

import (
	"context"
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ActivationStore = (*ActivationStore)(nil)

// ActivationStore implements driven.ActivationStore in process memory.
// Suitable for development only; activations are the one output that
// should normally land in Postgres.
type ActivationStore struct {
	mu          sync.RWMutex
	activations map[string]*domain.Activation
}

// NewActivationStore creates a new in-memory ActivationStore
func NewActivationStore() *ActivationStore {
	return &ActivationStore{
		activations: make(map[string]*domain.Activation),
	}
}

// Save persists a finalized activation
func (s *ActivationStore) Save(ctx context.Context, activation *domain.Activation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activations[activation.ID] = activation
	return nil
}

// Get retrieves an activation by ID
func (s *ActivationStore) Get(ctx context.Context, id string) (*domain.Activation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activation, ok := s.activations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return activation, nil
}
