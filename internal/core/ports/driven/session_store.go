package driven

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// SessionStore handles configuration-session persistence (Redis or memory).
// Sessions are ephemeral working state, not durable records; a store may
// drop them at ExpiresAt.
type SessionStore interface {
	// Save stores a session with TTL based on ExpiresAt
	Save(ctx context.Context, session *domain.ConfigSession) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*domain.ConfigSession, error)

	// Delete deletes a session
	Delete(ctx context.Context, id string) error

	// ListByOwner lists session IDs owned by the editor
	ListByOwner(ctx context.Context, ownerID string) ([]string, error)
}
