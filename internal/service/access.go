package service

import (
	"context"
	"strconv"

	"github.com/statustrack/backend/internal/db"
	"github.com/statustrack/backend/internal/model"
)

type subjectStore interface {
	GetUserByExternalSubject(ctx context.Context, subject string) (*model.User, error)
}

// AccessEvaluator decides whether a requester may touch an owned
// resource, and maps identities to local owner ids for creation.
type AccessEvaluator struct {
	repo subjectStore
}

func NewAccessEvaluator(repo subjectStore) *AccessEvaluator {
	return &AccessEvaluator{repo: repo}
}

// CanAccess reports whether claims may access a resource owned by
// ownerID: admins always may, everyone else only their own resources.
// A subject that does not parse as a numeric id (an opaque external
// identifier) compares unequal rather than erroring, so unmapped
// non-admin callers are denied, not failed.
func (e *AccessEvaluator) CanAccess(claims *model.Claims, ownerID int64) bool {
	if claims.IsAdmin {
		return true
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return false
	}
	return subject == ownerID
}

// ResolveOwner maps the requester's identity to a local user id for
// resource creation. Numeric subjects are local ids; opaque subjects
// are looked up by the external_subject column. An identity with no
// local mapping yields ErrUnresolvedOwner instead of a silent default.
func (e *AccessEvaluator) ResolveOwner(ctx context.Context, claims *model.Claims) (int64, error) {
	if id, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
		return id, nil
	}

	user, err := e.repo.GetUserByExternalSubject(ctx, claims.Subject)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrUnresolvedOwner
		}
		return 0, err
	}
	return user.ID, nil
}
