package driven

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// GroupProposal is one suggested group returned by the proposal service,
// before it is normalized into the collection.
type GroupProposal struct {
	Name          string   `json:"name"`
	Rationale     string   `json:"rationale"`
	CoveredTopics []string `json:"covered_topics"`
	Reasoning     string   `json:"reasoning,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

// ProposalService generates group proposals, source queries, and filter
// criteria from the semantic space. Results are suggestions; the caller
// decides whether and how to apply them. Every method is synchronous and
// must honour context cancellation.
type ProposalService interface {
	// ProposeGroups suggests a group decomposition covering the space's topics.
	// Existing groups are passed so proposals complement rather than duplicate them.
	ProposeGroups(ctx context.Context, space domain.SemanticSpace, existing []domain.RetrievalGroup) ([]GroupProposal, error)

	// GenerateQuery produces a source-specific query expression for the group
	GenerateQuery(ctx context.Context, group domain.RetrievalGroup, source domain.SourceType, space domain.SemanticSpace) (string, error)

	// GenerateFilter produces semantic filter criteria for the group.
	// The returned threshold may be out of range; callers clamp before applying.
	GenerateFilter(ctx context.Context, group domain.RetrievalGroup, space domain.SemanticSpace) (domain.SemanticFilter, error)

	// Model returns the model identifier stamped into group provenance
	Model() string

	// Ping verifies the proposal service is reachable
	Ping(ctx context.Context) error
}
