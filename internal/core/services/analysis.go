package services

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Ensure analysisService implements AnalysisService
var _ driving.AnalysisService = (*analysisService)(nil)

// analysisService implements the AnalysisService interface
type analysisService struct {
	store driven.SessionStore
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(store driven.SessionStore) driving.AnalysisService {
	return &analysisService{store: store}
}

// Coverage analyzes topic coverage for the session's groups
func (s *analysisService) Coverage(ctx context.Context, editorID, sessionID string) (*domain.CoverageResult, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	result := domain.AnalyzeCoverage(session.Space.Topics, session.Groups)
	return &result, nil
}

// Validate runs the full readiness check for the session
func (s *analysisService) Validate(ctx context.Context, editorID, sessionID string) (*domain.ValidationResult, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	result := domain.Validate(session.Space.Topics, session.Groups)
	return &result, nil
}
