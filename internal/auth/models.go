package auth

import (
	"github.com/golang-jwt/jwt/v4"
)

// JWTClaims is the payload shared by access and refresh tokens. Type tells
// them apart so a refresh token can never authenticate a request directly.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
