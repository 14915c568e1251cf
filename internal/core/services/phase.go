package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Ensure phaseService implements PhaseService
var _ driving.PhaseService = (*phaseService)(nil)

// phaseService implements the PhaseService interface
type phaseService struct {
	store  driven.SessionStore
	logger *slog.Logger
}

// NewPhaseService creates a new PhaseService
func NewPhaseService(store driven.SessionStore, logger *slog.Logger) driving.PhaseService {
	return &phaseService{
		store:  store,
		logger: logger.With("service", "phase"),
	}
}

// Advance moves the session to the next phase if the current phase allows it
func (s *phaseService) Advance(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrSessionFinalized
	}

	next, ok := session.Phase.Next()
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if !domain.CanAdvance(session.Phase, session.Space.Topics, session.Groups) {
		return nil, domain.ErrPhaseIncomplete
	}

	session.Phase = next
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("phase advanced", "session_id", sessionID, "phase", next)
	return session, nil
}

// Back moves the session to the previous phase; always allowed
func (s *phaseService) Back(ctx context.Context, editorID, sessionID string) (*domain.ConfigSession, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized() {
		return nil, domain.ErrSessionFinalized
	}

	prev, ok := session.Phase.Prev()
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	session.Phase = prev
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// States evaluates every phase against the session's current state
func (s *phaseService) States(ctx context.Context, editorID, sessionID string) ([]domain.PhaseState, error) {
	session, err := loadOwnedSession(ctx, s.store, editorID, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.PhaseStates(session.Phase, session.Space.Topics, session.Groups), nil
}
