package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/statustrack/backend/internal/client"
	"github.com/statustrack/backend/internal/config"
	"github.com/statustrack/backend/internal/db"
	"github.com/statustrack/backend/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
	maxNameLength     = 120
)

type authStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, email, name string, passwordHash, externalSubject *string, isAdmin bool) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByExternalSubject(ctx context.Context, subject string) (*model.User, error)
	LinkExternalSubject(ctx context.Context, userID int64, subject string) error
}

// IdentityProvider is the external service of record for credentials
// when AUTH_PROVIDER=external.
type IdentityProvider interface {
	IsConfigured() bool
	Register(ctx context.Context, email, password, name string) (*client.ExternalUser, error)
	Authenticate(ctx context.Context, email, password string) (*client.ExternalSession, error)
	Revoke(ctx context.Context, externalToken string) error
}

type AuthService struct {
	repo     authStore
	sessions *SessionManager
	identity IdentityProvider
	external bool
	logger   *zap.Logger

	// providerTokens maps subject -> provider access token so logout
	// can best-effort revoke the provider session. Process-local, like
	// the in-memory revocation set.
	providerTokens sync.Map
}

func NewAuthService(repo authStore, sessions *SessionManager, identity IdentityProvider, cfg config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	external := false
	switch cfg.Provider {
	case "", "local":
	case "external":
		external = true
		if identity == nil || !identity.IsConfigured() {
			return nil, errors.New("auth config invalid: AUTH_PROVIDER=external requires IDENTITY_URL and IDENTITY_SERVICE_KEY")
		}
	default:
		return nil, errors.New("auth config invalid: AUTH_PROVIDER must be local or external")
	}

	return &AuthService{
		repo:     repo,
		sessions: sessions,
		identity: identity,
		external: external,
		logger:   logger,
	}, nil
}

// Signup creates an account. In external mode the credentials live in
// the identity provider and only a profile row is stored locally. The
// very first account becomes an admin to bootstrap the system.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if err := validateSignup(email, name, req.Password); err != nil {
		return nil, err
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin := total == 0

	var passwordHash, externalSubject *string
	if s.external {
		extUser, err := s.identity.Register(ctx, email, req.Password, name)
		if err != nil {
			switch {
			case errors.Is(err, client.ErrAlreadyRegistered):
				return nil, ErrConflict
			case errors.Is(err, client.ErrInvalidCredentials):
				return nil, ErrInvalidInput
			}
			return nil, err
		}
		externalSubject = &extUser.ID
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		passwordHash = &hashStr
	}

	user, err := s.repo.CreateUser(ctx, email, name, passwordHash, externalSubject, isAdmin)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Wrong password and unknown email are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", ErrInvalidInput
	}

	if s.external {
		return s.loginExternal(ctx, email, password)
	}
	return s.loginLocal(ctx, email, password)
}

func (s *AuthService) loginLocal(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", ErrUnauthorized
		}
		return "", "", err
	}
	if !user.IsActive || user.PasswordHash == nil {
		return "", "", ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrUnauthorized
	}

	return s.issuePair(strconv.FormatInt(user.ID, 10), user.IsAdmin)
}

func (s *AuthService) loginExternal(ctx context.Context, email, password string) (string, string, error) {
	session, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrInvalidCredentials) {
			return "", "", ErrUnauthorized
		}
		return "", "", err
	}

	subject := session.User.ID
	isAdmin := false

	// The admin flag lives on the local profile; an account without one
	// gets a session anyway, with no admin rights and no owned records.
	profile, err := s.repo.GetUserByExternalSubject(ctx, subject)
	if err == nil {
		if !profile.IsActive {
			return "", "", ErrUnauthorized
		}
		isAdmin = profile.IsAdmin
	} else if db.IsNoRows(err) {
		if local, lookupErr := s.repo.GetUserByEmail(ctx, email); lookupErr == nil {
			if !local.IsActive {
				return "", "", ErrUnauthorized
			}
			isAdmin = local.IsAdmin
			if linkErr := s.repo.LinkExternalSubject(ctx, local.ID, subject); linkErr != nil {
				return "", "", linkErr
			}
		} else if !db.IsNoRows(lookupErr) {
			return "", "", lookupErr
		}
	} else {
		return "", "", err
	}

	s.providerTokens.Store(subject, session.AccessToken)
	return s.issuePair(subject, isAdmin)
}

func (s *AuthService) issuePair(subject string, isAdmin bool) (string, string, error) {
	access, err := s.sessions.IssueAccess(subject, isAdmin)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.sessions.IssueRefresh(subject, isAdmin)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", ErrUnauthorized
	}
	return s.sessions.RefreshAccess(ctx, refreshToken)
}

// Logout revokes the presented session. Provider-side revocation is
// best effort: a provider failure is logged and swallowed so local
// logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, claims *model.Claims) error {
	if err := s.sessions.Revoke(ctx, claims.SessionID, claims.ExpiresAt); err != nil {
		return err
	}

	if s.external {
		if token, ok := s.providerTokens.LoadAndDelete(claims.Subject); ok {
			if err := s.identity.Revoke(ctx, token.(string)); err != nil {
				s.logger.Warn("identity provider revoke failed",
					zap.String("subject", claims.Subject),
					zap.Error(err))
			}
		}
	}
	return nil
}

func validateSignup(email, name, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidInput
	}
	if name == "" || len(name) > maxNameLength {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}
