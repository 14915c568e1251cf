package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface.
// Tokens are stateless; the configuration session itself is the only
// server-side state worth keeping.
type authService struct {
	authAdapter   driven.AuthAdapter
	accessKeyHash string
	tokenTTL      time.Duration
}

// NewAuthService creates a new AuthService. accessKeyHash is the bcrypt
// hash of the shared editor access key from config.
func NewAuthService(authAdapter driven.AuthAdapter, accessKeyHash string) driving.AuthService {
	return &authService{
		authAdapter:   authAdapter,
		accessKeyHash: accessKeyHash,
		tokenTTL:      24 * time.Hour,
	}
}

// Login exchanges the access key for an editor token
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.AccessKey == "" {
		return nil, domain.ErrInvalidInput
	}

	if !s.authAdapter.VerifyAccessKey(req.AccessKey, s.accessKeyHash) {
		return nil, domain.ErrInvalidAccessKey
	}

	name := req.Name
	if name == "" {
		name = "editor"
	}

	editorID := generateID()
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &domain.TokenClaims{
		EditorID:  editorID,
		Name:      name,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		EditorID:  editorID,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		EditorID: claims.EditorID,
		Name:     claims.Name,
	}, nil
}

// Helper functions

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
