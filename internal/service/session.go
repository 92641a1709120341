package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/statustrack/backend/internal/config"
	"github.com/statustrack/backend/internal/model"
)

// TokenRevoker is the revocation set consulted on every validation.
// Add must be observed by all Contains calls that follow it.
type TokenRevoker interface {
	Add(ctx context.Context, sessionID string, ttl time.Duration) error
	Contains(ctx context.Context, sessionID string) (bool, error)
}

type sessionClaims struct {
	IsAdmin bool   `json:"is_admin"`
	Kind    string `json:"kind"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates bearer sessions. Tokens are HS256
// JWTs carrying the subject, the admin flag, a unique session id (jti),
// an expiry, and an access/refresh kind discriminator.
type SessionManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoker    TokenRevoker
}

func NewSessionManager(cfg config.AuthConfig, revoker TokenRevoker) (*SessionManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.JWTRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	return &SessionManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoker:    revoker,
	}, nil
}

func (m *SessionManager) IssueAccess(subject string, isAdmin bool) (string, error) {
	return m.issue(subject, isAdmin, model.TokenKindAccess, m.accessTTL)
}

func (m *SessionManager) IssueRefresh(subject string, isAdmin bool) (string, error) {
	return m.issue(subject, isAdmin, model.TokenKindRefresh, m.refreshTTL)
}

func (m *SessionManager) issue(subject string, isAdmin bool, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		IsAdmin: isAdmin,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token of the required kind and checks
// the revocation set. This is the sole enforcement point for logout.
func (m *SessionManager) Validate(ctx context.Context, tokenStr, requiredKind string) (*model.Claims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Kind != requiredKind {
		return nil, ErrWrongTokenKind
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}

	revoked, err := m.revoker.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking revocation set: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &model.Claims{
		Subject:   claims.Subject,
		IsAdmin:   claims.IsAdmin,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke adds a session id to the revocation set. Idempotent. The
// entry is kept until the token would have expired on its own.
func (m *SessionManager) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	return m.revoker.Add(ctx, sessionID, time.Until(expiresAt))
}

// RefreshAccess exchanges a valid refresh token for a new access token.
// The subject and admin flag are carried over from the refresh token as
// captured at issue time; a demotion takes effect at next login or when
// the refresh session is revoked.
func (m *SessionManager) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := m.Validate(ctx, refreshToken, model.TokenKindRefresh)
	if err != nil {
		return "", err
	}
	return m.IssueAccess(claims.Subject, claims.IsAdmin)
}
