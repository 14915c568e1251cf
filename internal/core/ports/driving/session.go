package driving

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// CreateSessionRequest starts a configuration session over a semantic space.
// The space is read-only input for the session's lifetime.
type CreateSessionRequest struct {
	Space domain.SemanticSpace `json:"space"`
}

// SessionService manages configuration-session lifecycle. Every operation
// except Create checks that editorID owns the session.
type SessionService interface {
	// Create starts a new session owned by the editor
	Create(ctx context.Context, editorID string, req CreateSessionRequest) (*domain.ConfigSession, error)

	// Get retrieves a session
	Get(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error)

	// List lists the editor's session IDs
	List(ctx context.Context, editorID string) ([]string, error)

	// Delete discards a session without activating anything
	Delete(ctx context.Context, editorID, sessionID string) error

	// Finalize validates the configuration, hands it off for activation,
	// and marks the session finalized. Fails with ErrNotReady when
	// ready_to_activate is false.
	Finalize(ctx context.Context, editorID, sessionID string) (*domain.Activation, error)
}
