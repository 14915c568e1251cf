package driving

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// PhaseService navigates the session's workflow phases
type PhaseService interface {
	// Advance moves the session to the next phase. Fails with
	// ErrPhaseIncomplete when the current phase's predicate is unmet.
	Advance(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error)

	// Back moves the session to the previous phase; always allowed
	Back(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error)

	// States evaluates every phase against the session's current state
	States(ctx context.Context, editorID, sessionID string) ([]domain.PhaseState, error)
}
