package domain

import "time"

// SessionStatus tracks the lifecycle of a configuration session
type SessionStatus string

const (
	// SessionStatusEditing is the normal state while the editor works.
	SessionStatusEditing SessionStatus = "editing"

	// SessionStatusFinalized means the configuration has been handed off;
	// further mutation is rejected.
	SessionStatusFinalized SessionStatus = "finalized"
)

// ConfigSession is one editor's configuration session: a read-only semantic
// space, the mutable group collection, and the current workflow phase.
// Exactly one editor owns a session; the collection's lifetime is bounded
// by the session and ends when the finalize step hands it off.
type ConfigSession struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Space     SemanticSpace   `json:"space"`
	Groups    []RetrievalGroup `json:"groups"`
	Phase     Phase           `json:"phase"`
	Status    SessionStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired checks if the session has expired
func (s *ConfigSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsFinalized returns true once the session's configuration has been handed off
func (s *ConfigSession) IsFinalized() bool {
	return s.Status == SessionStatusFinalized
}

// Activation is the finalized configuration handed to the persistence and
// activation step on finalize. It is the wire shape the scheduling side
// ingests; the engine itself keeps nothing after handoff.
type Activation struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"session_id"`
	OwnerID     string           `json:"owner_id"`
	Groups      []RetrievalGroup `json:"groups"`
	Validation  ValidationResult `json:"validation"`
	ActivatedAt time.Time        `json:"activated_at"`
}
