package mocks

import (
	"context"
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// MockActivationStore is a mock implementation of ActivationStore for testing
type MockActivationStore struct {
	mu          sync.RWMutex
	activations map[string]*domain.Activation

	// SaveErr, when set, is returned by Save
	SaveErr error
}

// NewMockActivationStore creates a new MockActivationStore
func NewMockActivationStore() *MockActivationStore {
	return &MockActivationStore{
		activations: make(map[string]*domain.Activation),
	}
}

func (m *MockActivationStore) Save(ctx context.Context, activation *domain.Activation) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations[activation.ID] = activation
	return nil
}

func (m *MockActivationStore) Get(ctx context.Context, id string) (*domain.Activation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	activation, ok := m.activations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return activation, nil
}

// Helper methods for testing

func (m *MockActivationStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activations)
}
