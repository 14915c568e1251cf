package driving

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// AnalysisService exposes coverage and validation over a session's state.
// Both are pure reads; calling them never changes the session.
type AnalysisService interface {
	// Coverage analyzes topic coverage for the session's groups
	Coverage(ctx context.Context, editorID, sessionID string) (*domain.CoverageResult, error)

	// Validate runs the full readiness check for the session
	Validate(ctx context.Context, editorID, sessionID string) (*domain.ValidationResult, error)
}
