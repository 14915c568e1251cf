package mocks

import (
	"context"
	"sync"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// MockProposalService is a mock implementation of ProposalService for testing.
// Canned results are set per method; errors take precedence. Blocking
// channels allow tests to hold a call open to exercise in-flight handling.
type MockProposalService struct {
	mu sync.Mutex

	Proposals    []driven.GroupProposal
	ProposalsErr error

	Query    string
	QueryErr error

	Filter    domain.SemanticFilter
	FilterErr error

	ModelName string
	PingErr   error

	// Block, when non-nil, is received from before any method returns.
	// Started gets a non-blocking send when a method begins, so tests can
	// wait for a call to be registered before acting.
	Block   chan struct{}
	Started chan struct{}

	ProposeCalls int
	QueryCalls   int
	FilterCalls  int
	LastGroupID  string
	LastSource   domain.SourceType
}

// NewMockProposalService creates a new MockProposalService
func NewMockProposalService() *MockProposalService {
	return &MockProposalService{ModelName: "mock-model"}
}

func (m *MockProposalService) wait(ctx context.Context) error {
	if m.Started != nil {
		select {
		case m.Started <- struct{}{}:
		default:
		}
	}
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockProposalService) ProposeGroups(ctx context.Context, space domain.SemanticSpace, existing []domain.RetrievalGroup) ([]driven.GroupProposal, error) {
	m.mu.Lock()
	m.ProposeCalls++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.ProposalsErr != nil {
		return nil, m.ProposalsErr
	}
	return m.Proposals, nil
}

func (m *MockProposalService) GenerateQuery(ctx context.Context, group domain.RetrievalGroup, source domain.SourceType, space domain.SemanticSpace) (string, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.LastGroupID = group.ID
	m.LastSource = source
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.QueryErr != nil {
		return "", m.QueryErr
	}
	return m.Query, nil
}

func (m *MockProposalService) GenerateFilter(ctx context.Context, group domain.RetrievalGroup, space domain.SemanticSpace) (domain.SemanticFilter, error) {
	m.mu.Lock()
	m.FilterCalls++
	m.LastGroupID = group.ID
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return domain.SemanticFilter{}, err
	}
	if m.FilterErr != nil {
		return domain.SemanticFilter{}, m.FilterErr
	}
	return m.Filter, nil
}

func (m *MockProposalService) Model() string {
	return m.ModelName
}

func (m *MockProposalService) Ping(ctx context.Context) error {
	return m.PingErr
}
