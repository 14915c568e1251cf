package driving

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// CreateGroupRequest adds a blank user-created group
type CreateGroupRequest struct {
	Name      string `json:"name,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// UpdateGroupRequest patches a group's editable fields; nil members are
// left unchanged
type UpdateGroupRequest struct {
	Name          *string  `json:"name,omitempty"`
	Rationale     *string  `json:"rationale,omitempty"`
	CoveredTopics []string `json:"covered_topics,omitempty"`
}

// SetQueryRequest replaces a group's query for one source
type SetQueryRequest struct {
	Expression string `json:"query_expression"`
	Enabled    bool   `json:"enabled"`
}

// SetFilterRequest replaces a group's semantic filter
type SetFilterRequest struct {
	Enabled   bool    `json:"enabled"`
	Criteria  string  `json:"criteria"`
	Threshold float64 `json:"threshold"`
}

// TestQueryRequest runs an expression against a live source
type TestQueryRequest struct {
	Expression string           `json:"query_expression"`
	DateRange  domain.DateRange `json:"date_range,omitempty"`
}

// GroupService manages the group collection inside a session. Mutations
// return the updated session snapshot. Generation operations call the
// proposal service synchronously and apply the result to the live session
// state; a concurrent duplicate for the same target fails with
// ErrOperationInFlight.
type GroupService interface {
	// Add creates a blank group
	Add(ctx context.Context, editorID, sessionID string, req CreateGroupRequest) (*domain.ConfigSession, error)

	// Update patches a group's name, rationale, or covered topics
	Update(ctx context.Context, editorID, sessionID, groupID string, req UpdateGroupRequest) (*domain.ConfigSession, error)

	// Remove deletes a group
	Remove(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error)

	// ToggleTopic flips the group's membership of one topic
	ToggleTopic(ctx context.Context, editorID, sessionID, groupID, topicID string) (*domain.ConfigSession, error)

	// SetQuery sets a group's query for one source (user edit)
	SetQuery(ctx context.Context, editorID, sessionID, groupID string, source domain.SourceType, req SetQueryRequest) (*domain.ConfigSession, error)

	// SetFilter sets a group's semantic filter (user edit)
	SetFilter(ctx context.Context, editorID, sessionID, groupID string, req SetFilterRequest) (*domain.ConfigSession, error)

	// DisableFilter resets a group's filter to the inert value
	DisableFilter(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error)

	// Propose asks the proposal service for groups covering the space and
	// appends them to the collection
	Propose(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error)

	// GenerateQuery generates and applies a query for one group and source
	GenerateQuery(ctx context.Context, editorID, sessionID, groupID string, source domain.SourceType) (*domain.ConfigSession, error)

	// GenerateFilter generates and applies filter criteria for one group
	GenerateFilter(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error)

	// TestQuery runs an expression against a live source without touching
	// group state
	TestQuery(ctx context.Context, editorID, sessionID string, source domain.SourceType, req TestQueryRequest) (*domain.QueryTestResult, error)
}
