package driving

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// AuthService handles editor authentication
type AuthService interface {
	// Login exchanges the shared access key for an editor token
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a token and returns the editor's auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
