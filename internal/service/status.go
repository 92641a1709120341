package service

import (
	"context"
	"errors"
	"strings"

	"github.com/statustrack/backend/internal/db"
	"github.com/statustrack/backend/internal/model"
	"github.com/statustrack/backend/internal/pagination"
)

const maxTitleLength = 200

type statusStore interface {
	CreateStatus(ctx context.Context, title string, description *string, state string, userID int64) (*model.Status, error)
	GetStatusByID(ctx context.Context, statusID int64) (*model.Status, error)
	CountStatuses(ctx context.Context, filter model.StatusFilter) (int64, error)
	ListStatuses(ctx context.Context, filter model.StatusFilter, offset int64, limit int) ([]model.Status, error)
	UpdateStatus(ctx context.Context, statusID int64, title, description, state *string) (*model.Status, error)
	DeleteStatus(ctx context.Context, statusID int64) error
}

// StatusService manages status records. Every operation is gated by
// the access evaluator: users see and touch their own records, admins
// see and touch everything.
type StatusService struct {
	repo      statusStore
	evaluator *AccessEvaluator
}

func NewStatusService(repo statusStore, evaluator *AccessEvaluator) *StatusService {
	return &StatusService{repo: repo, evaluator: evaluator}
}

// List returns a page of statuses. Non-admins are filtered to their own
// records before pagination; the optional state filter applies to both.
func (s *StatusService) List(ctx context.Context, claims *model.Claims, state string, params pagination.Params) ([]model.Status, pagination.Meta, error) {
	filter := model.StatusFilter{State: state}
	if !claims.IsAdmin {
		ownerID, err := s.evaluator.ResolveOwner(ctx, claims)
		if err != nil {
			if errors.Is(err, ErrUnresolvedOwner) {
				// An unmapped identity owns nothing; an empty page is
				// the correct answer, not an error.
				return []model.Status{}, params.PageMeta(0), nil
			}
			return nil, pagination.Meta{}, err
		}
		filter.UserID = ownerID
	}

	total, err := s.repo.CountStatuses(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	statuses, err := s.repo.ListStatuses(ctx, filter, params.Offset(), params.Limit())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return statuses, params.PageMeta(total), nil
}

func (s *StatusService) Create(ctx context.Context, claims *model.Claims, req model.CreateStatusRequest) (*model.Status, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidInput
	}

	state := req.State
	if state == "" {
		state = model.StateOpen
	}
	if !model.ValidState(state) {
		return nil, ErrInvalidInput
	}

	ownerID, err := s.evaluator.ResolveOwner(ctx, claims)
	if err != nil {
		return nil, err
	}

	status, err := s.repo.CreateStatus(ctx, title, req.Description, state, ownerID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			// Owner row vanished between resolution and insert.
			return nil, ErrUnresolvedOwner
		}
		return nil, err
	}
	return status, nil
}

func (s *StatusService) Get(ctx context.Context, claims *model.Claims, statusID int64) (*model.Status, error) {
	status, err := s.repo.GetStatusByID(ctx, statusID)
	if err != nil {
		if db.IsNoRows(err) {
			// Existence is checked before authorization so a non-owner
			// probing a missing id sees 404, not 403.
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.evaluator.CanAccess(claims, status.UserID) {
		return nil, ErrForbidden
	}
	return status, nil
}

func (s *StatusService) Update(ctx context.Context, claims *model.Claims, statusID int64, req model.UpdateStatusRequest) (*model.Status, error) {
	if _, err := s.Get(ctx, claims, statusID); err != nil {
		return nil, err
	}

	var title *string
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" || len(trimmed) > maxTitleLength {
			return nil, ErrInvalidInput
		}
		title = &trimmed
	}
	if req.State != nil && !model.ValidState(*req.State) {
		return nil, ErrInvalidInput
	}

	return s.repo.UpdateStatus(ctx, statusID, title, req.Description, req.State)
}

func (s *StatusService) Delete(ctx context.Context, claims *model.Claims, statusID int64) error {
	if _, err := s.Get(ctx, claims, statusID); err != nil {
		return err
	}
	return s.repo.DeleteStatus(ctx, statusID)
}
