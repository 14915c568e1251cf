package driven

import "github.com/lira-labs/lira-core/internal/core/domain"

// AuthAdapter handles authentication cryptographic operations.
// This does NOT handle storage - the access key hash comes from config.
type AuthAdapter interface {
	// Access key operations
	HashAccessKey(key string) (string, error)
	VerifyAccessKey(key, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
