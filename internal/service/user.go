package service

import (
	"context"
	"errors"
	"strings"

	"github.com/statustrack/backend/internal/db"
	"github.com/statustrack/backend/internal/model"
	"github.com/statustrack/backend/internal/pagination"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	CountUsers(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context, offset int64, limit int) ([]model.User, error)
	CreateUser(ctx context.Context, email, name string, passwordHash, externalSubject *string, isAdmin bool) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByExternalSubject(ctx context.Context, subject string) (*model.User, error)
	UpdateUser(ctx context.Context, userID int64, name, passwordHash *string, isActive, isAdmin *bool) (*model.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// UserService manages user records. Listing and creation are
// admin-only; detail operations are gated by the access evaluator, so
// users can also read and edit their own record by id.
type UserService struct {
	repo      userStore
	evaluator *AccessEvaluator
}

func NewUserService(repo userStore, evaluator *AccessEvaluator) *UserService {
	return &UserService{repo: repo, evaluator: evaluator}
}

func (s *UserService) List(ctx context.Context, claims *model.Claims, params pagination.Params) ([]model.User, pagination.Meta, error) {
	if !claims.IsAdmin {
		return nil, pagination.Meta{}, ErrForbidden
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	users, err := s.repo.ListUsers(ctx, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, params.PageMeta(total), nil
}

func (s *UserService) Create(ctx context.Context, claims *model.Claims, req model.CreateUserRequest) (*model.User, error) {
	if !claims.IsAdmin {
		return nil, ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if err := validateSignup(email, name, req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user, err := s.repo.CreateUser(ctx, email, name, &hashStr, nil, false)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// GetSelf returns the profile of the authenticated identity, resolving
// either a numeric local id or an opaque external subject.
func (s *UserService) GetSelf(ctx context.Context, claims *model.Claims) (*model.User, error) {
	return s.self(ctx, claims)
}

// UpdateSelf applies a partial update to the caller's own profile.
// Only name and password are honored here; is_active and is_admin are
// admin-managed through Update.
func (s *UserService) UpdateSelf(ctx context.Context, claims *model.Claims, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.self(ctx, claims)
	if err != nil {
		return nil, err
	}

	name, passwordHash, err := updateFields(req)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateUser(ctx, user.ID, name, passwordHash, nil, nil)
}

func (s *UserService) Get(ctx context.Context, claims *model.Claims, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.evaluator.CanAccess(claims, user.ID) {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, claims *model.Claims, userID int64, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, claims, userID)
	if err != nil {
		return nil, err
	}

	name, passwordHash, err := updateFields(req)
	if err != nil {
		return nil, err
	}

	// Activation and admin status can only be changed by admins.
	var isActive, isAdmin *bool
	if claims.IsAdmin {
		isActive = req.IsActive
		isAdmin = req.IsAdmin
	}

	return s.repo.UpdateUser(ctx, user.ID, name, passwordHash, isActive, isAdmin)
}

// Delete removes a user and, via the cascade constraint, every status
// they own.
func (s *UserService) Delete(ctx context.Context, claims *model.Claims, userID int64) error {
	if _, err := s.Get(ctx, claims, userID); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, userID)
}

func (s *UserService) self(ctx context.Context, claims *model.Claims) (*model.User, error) {
	ownerID, err := s.evaluator.ResolveOwner(ctx, claims)
	if err != nil {
		if errors.Is(err, ErrUnresolvedOwner) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func updateFields(req model.UpdateUserRequest) (name, passwordHash *string, err error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" || len(trimmed) > maxNameLength {
			return nil, nil, ErrInvalidInput
		}
		name = &trimmed
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength || len(*req.Password) > maxPasswordLength {
			return nil, nil, ErrInvalidInput
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, nil, hashErr
		}
		hashStr := string(hash)
		passwordHash = &hashStr
	}
	return name, passwordHash, nil
}
