package mocks

import (
	"context"
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// MockQueryTestService is a mock implementation of QueryTestService for testing
type MockQueryTestService struct {
	mu sync.Mutex

	Results map[domain.SourceType]*domain.QueryTestResult
	Err     error

	Calls          int
	LastSource     domain.SourceType
	LastExpression string
}

// NewMockQueryTestService creates a new MockQueryTestService
func NewMockQueryTestService() *MockQueryTestService {
	return &MockQueryTestService{
		Results: make(map[domain.SourceType]*domain.QueryTestResult),
	}
}

func (m *MockQueryTestService) TestQuery(ctx context.Context, source domain.SourceType, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error) {
	m.mu.Lock()
	m.Calls++
	m.LastSource = source
	m.LastExpression = expression
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result, ok := m.Results[source]
	if !ok {
		return nil, domain.ErrSourceUnsupported
	}
	return result, nil
}

func (m *MockQueryTestService) SupportedSources() []domain.SourceType {
	sources := make([]domain.SourceType, 0, len(m.Results))
	for _, src := range domain.KnownSources() {
		if _, ok := m.Results[src]; ok {
			sources = append(sources, src)
		}
	}
	return sources
}
