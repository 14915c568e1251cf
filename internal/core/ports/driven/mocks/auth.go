package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// Hashing is a reversible prefix scheme and tokens are a parseable string
// encoding, good enough to drive service logic without real crypto.
type MockAuthAdapter struct{}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

func (m *MockAuthAdapter) HashAccessKey(key string) (string, error) {
	return "hashed:" + key, nil
}

func (m *MockAuthAdapter) VerifyAccessKey(key, hash string) bool {
	return hash == "hashed:"+key
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	return fmt.Sprintf("token:%s:%s:%d", claims.EditorID, claims.Name, claims.ExpiresAt), nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 4 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	var exp int64
	if _, err := fmt.Sscanf(parts[3], "%d", &exp); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if exp < time.Now().Unix() {
		return nil, domain.ErrTokenExpired
	}
	return &domain.TokenClaims{
		EditorID:  parts[1],
		Name:      parts[2],
		ExpiresAt: exp,
	}, nil
}
