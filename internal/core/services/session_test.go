package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven/mocks"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSpace(topicIDs ...string) domain.SemanticSpace {
	topics := make([]domain.Topic, 0, len(topicIDs))
	for _, id := range topicIDs {
		topics = append(topics, domain.Topic{ID: id, Name: "Topic " + id, Importance: domain.ImportanceMedium})
	}
	return domain.SemanticSpace{Topics: topics}
}

func readyGroup(id string, topicIDs ...string) domain.RetrievalGroup {
	return domain.RetrievalGroup{
		ID:            id,
		Name:          "Group " + id,
		CoveredTopics: topicIDs,
		SourceQueries: map[domain.SourceType]domain.SourceQuery{
			domain.SourcePubMed: {Expression: "test[tiab]", Enabled: true},
		},
		SemanticFilter: domain.DisabledFilter(),
		Metadata:       domain.NewManualMetadata(time.Now()),
	}
}

func seedSession(t *testing.T, store *mocks.MockSessionStore, ownerID string, space domain.SemanticSpace, groups []domain.RetrievalGroup) *domain.ConfigSession {
	t.Helper()
	now := time.Now()
	session := &domain.ConfigSession{
		ID:        "sess-1",
		OwnerID:   ownerID,
		Space:     space,
		Groups:    groups,
		Phase:     domain.PhaseProposeGroups,
		Status:    domain.SessionStatusEditing,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func TestSessionService_Create(t *testing.T) {
	store := mocks.NewMockSessionStore()
	svc := NewSessionService(store, mocks.NewMockActivationStore(), testLogger())

	session, err := svc.Create(context.Background(), "editor-1", driving.CreateSessionRequest{
		Space: testSpace("t1", "t2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.OwnerID != "editor-1" {
		t.Errorf("expected owner editor-1, got %s", session.OwnerID)
	}
	if session.Phase != domain.PhaseProposeGroups {
		t.Errorf("expected initial phase propose_groups, got %s", session.Phase)
	}
	if len(session.Groups) != 0 {
		t.Errorf("expected empty collection, got %d groups", len(session.Groups))
	}
	if store.Count() != 1 {
		t.Errorf("expected session persisted, store has %d", store.Count())
	}
}

func TestSessionService_Create_InvalidSpace(t *testing.T) {
	store := mocks.NewMockSessionStore()
	svc := NewSessionService(store, mocks.NewMockActivationStore(), testLogger())

	tests := []struct {
		name  string
		space domain.SemanticSpace
	}{
		{"no topics", domain.SemanticSpace{}},
		{"missing topic id", domain.SemanticSpace{Topics: []domain.Topic{{Name: "x", Importance: domain.ImportanceHigh}}}},
		{"bad importance", domain.SemanticSpace{Topics: []domain.Topic{{ID: "t1", Importance: "critical"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "editor-1", driving.CreateSessionRequest{Space: tt.space})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSessionService_Get_EnforcesOwnership(t *testing.T) {
	store := mocks.NewMockSessionStore()
	svc := NewSessionService(store, mocks.NewMockActivationStore(), testLogger())
	seedSession(t, store, "editor-1", testSpace("t1"), nil)

	if _, err := svc.Get(context.Background(), "editor-1", "sess-1"); err != nil {
		t.Errorf("owner must be able to read the session: %v", err)
	}
	if _, err := svc.Get(context.Background(), "editor-2", "sess-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "editor-1", "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_Get_ExpiredReadsAsMissing(t *testing.T) {
	store := mocks.NewMockSessionStore()
	svc := NewSessionService(store, mocks.NewMockActivationStore(), testLogger())
	session := seedSession(t, store, "editor-1", testSpace("t1"), nil)
	session.ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.Get(context.Background(), "editor-1", "sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected expired session to read as missing, got %v", err)
	}
}

func TestSessionService_Finalize(t *testing.T) {
	store := mocks.NewMockSessionStore()
	activations := mocks.NewMockActivationStore()
	svc := NewSessionService(store, activations, testLogger())
	seedSession(t, store, "editor-1", testSpace("t1"), []domain.RetrievalGroup{readyGroup("g1", "t1")})

	activation, err := svc.Finalize(context.Background(), "editor-1", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activation.SessionID != "sess-1" {
		t.Errorf("expected activation for sess-1, got %s", activation.SessionID)
	}
	if !activation.Validation.ReadyToActivate {
		t.Error("expected the recorded validation to be ready")
	}
	if activations.Count() != 1 {
		t.Errorf("expected activation persisted, store has %d", activations.Count())
	}

	session, _ := store.Get(context.Background(), "sess-1")
	if !session.IsFinalized() {
		t.Error("expected session marked finalized after handoff")
	}

	if _, err := svc.Finalize(context.Background(), "editor-1", "sess-1"); !errors.Is(err, domain.ErrSessionFinalized) {
		t.Errorf("expected ErrSessionFinalized on repeat, got %v", err)
	}
}

func TestSessionService_Finalize_NotReady(t *testing.T) {
	store := mocks.NewMockSessionStore()
	activations := mocks.NewMockActivationStore()
	svc := NewSessionService(store, activations, testLogger())
	seedSession(t, store, "editor-1", testSpace("t1", "t2"), []domain.RetrievalGroup{readyGroup("g1", "t1")})

	if _, err := svc.Finalize(context.Background(), "editor-1", "sess-1"); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("expected ErrNotReady with incomplete coverage, got %v", err)
	}
	if activations.Count() != 0 {
		t.Error("a failed finalize must not persist an activation")
	}
}

func TestSessionService_Finalize_HandoffFailureLeavesSessionEditable(t *testing.T) {
	store := mocks.NewMockSessionStore()
	activations := mocks.NewMockActivationStore()
	activations.SaveErr = errors.New("pg down")
	svc := NewSessionService(store, activations, testLogger())
	seedSession(t, store, "editor-1", testSpace("t1"), []domain.RetrievalGroup{readyGroup("g1", "t1")})

	if _, err := svc.Finalize(context.Background(), "editor-1", "sess-1"); err == nil {
		t.Fatal("expected handoff error to surface")
	}

	session, _ := store.Get(context.Background(), "sess-1")
	if session.IsFinalized() {
		t.Error("a failed handoff must leave the session editable")
	}
}

func TestSessionService_Delete(t *testing.T) {
	store := mocks.NewMockSessionStore()
	svc := NewSessionService(store, mocks.NewMockActivationStore(), testLogger())
	seedSession(t, store, "editor-1", testSpace("t1"), nil)

	if err := svc.Delete(context.Background(), "editor-2", "sess-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), "editor-1", "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Count() != 0 {
		t.Error("expected session removed from store")
	}
}
