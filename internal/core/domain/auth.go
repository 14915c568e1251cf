package domain

import "time"

// AuthContext contains authenticated editor info for request context
type AuthContext struct {
	EditorID string `json:"editor_id"`
	Name     string `json:"name"`
}

// LoginRequest exchanges the access key for an editor token
type LoginRequest struct {
	AccessKey string `json:"access_key"`
	Name      string `json:"name,omitempty"`
}

// LoginResponse is returned after successful authentication
type LoginResponse struct {
	Token     string    `json:"token"`
	EditorID  string    `json:"editor_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	EditorID  string `json:"editor_id"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
