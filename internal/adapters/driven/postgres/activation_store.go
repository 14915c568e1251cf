package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ActivationStore = (*ActivationStore)(nil)

// ActivationStore implements driven.ActivationStore using PostgreSQL
type ActivationStore struct {
	db *DB
}

// NewActivationStore creates a new PostgreSQL-backed ActivationStore
func NewActivationStore(db *DB) *ActivationStore {
	return &ActivationStore{db: db}
}

// Save persists a finalized activation
func (s *ActivationStore) Save(ctx context.Context, activation *domain.Activation) error {
	groups, err := json.Marshal(activation.Groups)
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}
	validation, err := json.Marshal(activation.Validation)
	if err != nil {
		return fmt.Errorf("failed to marshal validation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activations (id, session_id, owner_id, groups, validation, activated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		activation.ID,
		activation.SessionID,
		activation.OwnerID,
		groups,
		validation,
		activation.ActivatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save activation: %w", err)
	}
	return nil
}

// Get retrieves an activation by ID
func (s *ActivationStore) Get(ctx context.Context, id string) (*domain.Activation, error) {
	var (
		activation domain.Activation
		groups     []byte
		validation []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, owner_id, groups, validation, activated_at
		FROM activations
		WHERE id = $1`, id).Scan(
		&activation.ID,
		&activation.SessionID,
		&activation.OwnerID,
		&groups,
		&validation,
		&activation.ActivatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activation: %w", err)
	}

	if err := json.Unmarshal(groups, &activation.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	if err := json.Unmarshal(validation, &activation.Validation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation: %w", err)
	}

	return &activation, nil
}
