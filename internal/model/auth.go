package model

import "time"

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims are the verified attributes carried by a bearer token for the
// lifetime of one request. Subject may be a numeric local user id or an
// opaque identifier assigned by the external provider; callers must not
// assume it parses as a number.
type Claims struct {
	Subject   string
	IsAdmin   bool
	SessionID string
	ExpiresAt time.Time
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest accepts "username" as an alias for "email" to stay
// compatible with form-style frontends.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type LogoutResponse struct {
	Message   string    `json:"message"`
	RevokedAt time.Time `json:"revoked_at"`
}
