package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Ensure sessionService implements SessionService
var _ driving.SessionService = (*sessionService)(nil)

// sessionService implements the SessionService interface
type sessionService struct {
	store       driven.SessionStore
	activations driven.ActivationStore
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	store driven.SessionStore,
	activations driven.ActivationStore,
	logger *slog.Logger,
) driving.SessionService {
	return &sessionService{
		store:       store,
		activations: activations,
		sessionTTL:  7 * 24 * time.Hour,
		logger:      logger.With("service", "session"),
	}
}

// Create starts a new configuration session over a semantic space
func (s *sessionService) Create(ctx context.Context, editorID string, req driving.CreateSessionRequest) (*domain.ConfigSession, error) {
	if len(req.Space.Topics) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, t := range req.Space.Topics {
		if t.ID == "" || !t.Importance.IsValid() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	session := &domain.ConfigSession{
		ID:        generateID(),
		OwnerID:   editorID,
		Space:     req.Space,
		Groups:    []domain.RetrievalGroup{},
		Phase:     domain.PhaseProposeGroups,
		Status:    domain.SessionStatusEditing,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		"session_id", session.ID,
		"topics", len(req.Space.Topics))

	return session, nil
}

// Get retrieves a session owned by the editor
func (s *sessionService) Get(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error) {
	return loadOwnedSession(ctx, s.store, editorID, sessionID)
}

// List lists the editor's session IDs
func (s *sessionService) List(ctx context.Context, editorID string) ([]string, error) {
	return s.store.ListByOwner(ctx, editorID)
}

// Delete discards a session without activating anything
func (s *sessionService) Delete(ctx context.Context, editorID, sessionID string) error {
	if _, err := loadOwnedSession(ctx, s.store, editorID, sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

// Finalize validates the configuration and hands it off for activation
func (s *sessionService) Finalize(ctx context.Context, editorID, sessionID string) (*domain.Activation, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrSessionFinalized
	}

	validation := domain.Validate(session.Space.Topics, session.Groups)
	if !validation.ReadyToActivate {
		return nil, domain.ErrNotReady
	}

	activation := &domain.Activation{
		ID:          generateID(),
		SessionID:   session.ID,
		OwnerID:     session.OwnerID,
		Groups:      session.Groups,
		Validation:  validation,
		ActivatedAt: time.Now(),
	}

	if err := s.activations.Save(ctx, activation); err != nil {
		s.logger.Error("activation handoff failed",
			"session_id", session.ID,
			"error", err)
		return nil, err
	}

	// The session is only marked finalized after the handoff succeeds;
	// a failed handoff leaves it editable.
	session.Status = domain.SessionStatusFinalized
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session finalized",
		"session_id", session.ID,
		"activation_id", activation.ID,
		"groups", len(activation.Groups))

	return activation, nil
}

// loadOwnedSession loads a live session and enforces ownership. Expired
// sessions read as missing even if the store has not evicted them yet.
func loadOwnedSession(ctx context.Context, store driven.SessionStore, editorID, sessionID string) (*domain.ConfigSession, error) {
	session, err := store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, domain.ErrSessionNotFound
	}
	if session.OwnerID != editorID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}
