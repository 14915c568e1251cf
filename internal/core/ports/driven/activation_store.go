package driven

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// ActivationStore receives the finalized configuration at handoff.
// This is the boundary to the scheduling side: once Save returns, the
// groups belong to the retrieval pipeline and the session is done.
type ActivationStore interface {
	// Save persists a finalized activation
	Save(ctx context.Context, activation *domain.Activation) error

	// Get retrieves an activation by ID
	Get(ctx context.Context, id string) (*domain.Activation, error)
}
