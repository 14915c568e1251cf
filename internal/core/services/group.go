package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Ensure groupService implements GroupService
var _ driving.GroupService = (*groupService)(nil)

// groupService implements the GroupService interface. All mutations go
// through the collection operations in the domain package; the service
// adds ownership checks, the finalized guard, and in-flight tracking
// around generation calls.
type groupService struct {
	store    driven.SessionStore
	proposer driven.ProposalService
	tester   driven.QueryTestService
	inflight *inflightTracker
	logger   *slog.Logger
}

// NewGroupService creates a new GroupService. proposer and tester may be
// nil; the corresponding operations then fail with ErrServiceUnavailable.
func NewGroupService(
	store driven.SessionStore,
	proposer driven.ProposalService,
	tester driven.QueryTestService,
	logger *slog.Logger,
) driving.GroupService {
	return &groupService{
		store:    store,
		proposer: proposer,
		tester:   tester,
		inflight: newInflightTracker(),
		logger:   logger.With("service", "group"),
	}
}

// Add creates a blank user-created group
func (s *groupService) Add(ctx context.Context, editorID, sessionID string, req driving.CreateGroupRequest) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups := domain.AddGroup(session.Groups, uuid.NewString(), time.Now())
		g := &groups[len(groups)-1]
		g.Name = req.Name
		g.Rationale = req.Rationale
		session.Groups = groups
		return nil
	})
}

// Update patches a group's editable fields
func (s *groupService) Update(ctx context.Context, editorID, sessionID, groupID string, req driving.UpdateGroupRequest) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups, err := domain.EditGroupFields(session.Groups, groupID, domain.GroupFieldPatch{
			Name:          req.Name,
			Rationale:     req.Rationale,
			CoveredTopics: req.CoveredTopics,
		}, time.Now())
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
}

// Remove deletes a group and supersedes its pending generation calls
func (s *groupService) Remove(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error) {
	session, err := s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups, err := domain.RemoveGroup(session.Groups, groupID)
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.inflight.Invalidate(groupKeyPrefix(sessionID, groupID))
	return session, nil
}

// ToggleTopic flips the group's membership of one topic
func (s *groupService) ToggleTopic(ctx context.Context, editorID, sessionID, groupID, topicID string) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		// Adding a topic outside the space is rejected; removing a stale
		// reference is allowed so shrunken spaces can be cleaned up.
		group := domain.FindGroup(session.Groups, groupID)
		if group == nil {
			return domain.ErrGroupNotFound
		}
		if !group.CoversTopic(topicID) && !session.Space.HasTopic(topicID) {
			return domain.ErrUnknownTopic
		}
		groups, err := domain.ToggleTopicMembership(session.Groups, groupID, topicID, time.Now())
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
}

// SetQuery sets a group's query for one source as a user edit
func (s *groupService) SetQuery(ctx context.Context, editorID, sessionID, groupID string, source domain.SourceType, req driving.SetQueryRequest) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups, err := domain.SetSourceQuery(session.Groups, groupID, source, req.Expression, req.Enabled, domain.EditOriginUser, time.Now())
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
}

// SetFilter sets a group's semantic filter as a user edit
func (s *groupService) SetFilter(ctx context.Context, editorID, sessionID, groupID string, req driving.SetFilterRequest) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups, err := domain.SetSemanticFilter(session.Groups, groupID, domain.SemanticFilter{
			Enabled:   req.Enabled,
			Criteria:  req.Criteria,
			Threshold: req.Threshold,
		}, domain.EditOriginUser, time.Now())
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
}

// DisableFilter resets a group's filter to the inert value
func (s *groupService) DisableFilter(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error) {
	return s.mutate(ctx, editorID, sessionID, func(session *domain.ConfigSession) error {
		groups, err := domain.DisableFilter(session.Groups, groupID, time.Now())
		if err != nil {
			return err
		}
		session.Groups = groups
		return nil
	})
}

// Propose asks the proposal service for a group decomposition and appends
// the results to the collection
func (s *groupService) Propose(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error) {
	if s.proposer == nil {
		return nil, domain.ErrServiceUnavailable
	}
	session, err := s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}

	key := proposeKey(sessionID)
	token, err := s.inflight.Begin(key)
	if err != nil {
		return nil, err
	}

	proposals, err := s.proposer.ProposeGroups(ctx, session.Space, session.Groups)
	if err != nil {
		s.inflight.End(key, token)
		s.logger.Warn("group proposal failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("proposing groups: %w", err)
	}

	// The call may have outlived the session; re-load and re-check before
	// applying, and discard the result if the token was superseded.
	if !s.inflight.End(key, token) {
		return nil, domain.ErrStaleResponse
	}
	session, err = s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	proposed := make([]domain.RetrievalGroup, 0, len(proposals))
	for _, p := range proposals {
		proposed = append(proposed, domain.RetrievalGroup{
			ID:             uuid.NewString(),
			Name:           p.Name,
			Rationale:      p.Rationale,
			CoveredTopics:  p.CoveredTopics,
			SourceQueries:  map[domain.SourceType]domain.SourceQuery{},
			SemanticFilter: domain.DisabledFilter(),
			Metadata: domain.NewGeneratedMetadata(now, s.proposer.Model(), p.Reasoning,
				session.Space.TopicNames(), p.Confidence),
		})
	}
	session.Groups = domain.AppendGroups(session.Groups, proposed)
	session.UpdatedAt = now

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("proposals applied",
		"session_id", sessionID,
		"proposed", len(proposed))

	return session, nil
}

// GenerateQuery generates a query for one group and source and applies it
// with generated provenance
func (s *groupService) GenerateQuery(ctx context.Context, editorID, sessionID, groupID string, source domain.SourceType) (*domain.ConfigSession, error) {
	if s.proposer == nil {
		return nil, domain.ErrServiceUnavailable
	}
	if !source.IsValid() {
		return nil, domain.ErrUnknownSource
	}
	session, err := s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	group := domain.FindGroup(session.Groups, groupID)
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}

	key := queryKey(sessionID, groupID, source)
	token, err := s.inflight.Begin(key)
	if err != nil {
		return nil, err
	}

	expression, err := s.proposer.GenerateQuery(ctx, *group, source, session.Space)
	if err != nil {
		s.inflight.End(key, token)
		s.logger.Warn("query generation failed",
			"session_id", sessionID,
			"group_id", groupID,
			"source", source,
			"error", err)
		return nil, fmt.Errorf("generating %s query: %w", source, err)
	}

	if !s.inflight.End(key, token) {
		return nil, domain.ErrStaleResponse
	}
	session, err = s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}

	groups, err := domain.SetSourceQuery(session.Groups, groupID, source, expression, true, domain.EditOriginGenerated, time.Now())
	if err != nil {
		return nil, err
	}
	session.Groups = groups
	session.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateFilter generates filter criteria for one group and applies them
// with generated provenance
func (s *groupService) GenerateFilter(ctx context.Context, editorID, sessionID, groupID string) (*domain.ConfigSession, error) {
	if s.proposer == nil {
		return nil, domain.ErrServiceUnavailable
	}
	session, err := s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	group := domain.FindGroup(session.Groups, groupID)
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}

	key := filterKey(sessionID, groupID)
	token, err := s.inflight.Begin(key)
	if err != nil {
		return nil, err
	}

	filter, err := s.proposer.GenerateFilter(ctx, *group, session.Space)
	if err != nil {
		s.inflight.End(key, token)
		s.logger.Warn("filter generation failed",
			"session_id", sessionID,
			"group_id", groupID,
			"error", err)
		return nil, fmt.Errorf("generating filter: %w", err)
	}

	if !s.inflight.End(key, token) {
		return nil, domain.ErrStaleResponse
	}
	session, err = s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}

	groups, err := domain.SetSemanticFilter(session.Groups, groupID, filter, domain.EditOriginGenerated, time.Now())
	if err != nil {
		return nil, err
	}
	session.Groups = groups
	session.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// TestQuery runs an expression against a live source. Purely advisory;
// group state is never touched.
func (s *groupService) TestQuery(ctx context.Context, editorID, sessionID string, source domain.SourceType, req driving.TestQueryRequest) (*domain.QueryTestResult, error) {
	if s.tester == nil {
		return nil, domain.ErrServiceUnavailable
	}
	if !source.IsValid() {
		return nil, domain.ErrUnknownSource
	}
	if _, err := loadOwnedSession(ctx, s.store, editorID, sessionID); err != nil {
		return nil, err
	}

	key := testKey(sessionID, source)
	token, err := s.inflight.Begin(key)
	if err != nil {
		return nil, err
	}
	defer s.inflight.End(key, token)

	result, err := s.tester.TestQuery(ctx, source, req.Expression, req.DateRange)
	if err != nil {
		s.logger.Warn("query test failed",
			"session_id", sessionID,
			"source", source,
			"error", err)
		return nil, err
	}
	return result, nil
}

// mutate loads the editable session, applies fn, stamps UpdatedAt, and saves
func (s *groupService) mutate(ctx context.Context, editorID, sessionID string, fn func(*domain.ConfigSession) error) (*domain.ConfigSession, error) {
	session, err := s.loadEditable(ctx, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *groupService) loadEditable(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrSessionFinalized
	}
	return session, nil
}

// In-flight keys

func proposeKey(sessionID string) string {
	return "sess:" + sessionID + ":propose"
}

func groupKeyPrefix(sessionID, groupID string) string {
	return "sess:" + sessionID + ":group:" + groupID + ":"
}

func queryKey(sessionID, groupID string, source domain.SourceType) string {
	return groupKeyPrefix(sessionID, groupID) + "query:" + source.String()
}

func filterKey(sessionID, groupID string) string {
	return groupKeyPrefix(sessionID, groupID) + "filter"
}

func testKey(sessionID string, source domain.SourceType) string {
	return "sess:" + sessionID + ":test:" + source.String()
}
